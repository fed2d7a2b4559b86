package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/msgslot/internal/errors"
	"github.com/Iron-Ham/msgslot/internal/slot"
)

var sendCmd = &cobra.Command{
	Use:   "send <instance> <channel> <message>",
	Short: "Write a message to a channel",
	Long: `Send opens the instance, selects the channel and writes the message,
replacing whatever the channel held before.

Messages must be between 1 and 128 bytes.

Examples:
  msgslot send 5 7 hello`,
	Args: cobra.ExactArgs(3),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	instance, err := parseInstance(args[0])
	if err != nil {
		return err
	}
	channel, err := parseChannel(args[1])
	if err != nil {
		return err
	}
	msg := []byte(args[2])
	if len(msg) == 0 || len(msg) > slot.MaxMessageLen {
		return errors.NewValidationError(fmt.Sprintf("message must be between 1 and %d bytes", slot.MaxMessageLen)).
			WithField("message").WithValue(len(msg))
	}

	ctx := cmd.Context()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	h, err := c.Open(ctx, instance)
	if err != nil {
		return err
	}
	defer func() { _ = h.Close(ctx) }()

	if err := h.Select(ctx, channel); err != nil {
		return err
	}
	n, err := h.Write(ctx, msg)
	if err != nil {
		return err
	}
	if n != len(msg) {
		return fmt.Errorf("short write: %d of %d bytes", n, len(msg))
	}
	return nil
}
