package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Iron-Ham/msgslot/internal/slot"
)

var readNewline bool

var readCmd = &cobra.Command{
	Use:   "read <instance> <channel>",
	Short: "Print the message stored in a channel",
	Long: `Read opens the instance, selects the channel and prints its message
exactly as stored. Reading does not consume the message.

Examples:
  msgslot read 5 7
  msgslot read -n 5 7`,
	Args: cobra.ExactArgs(2),
	RunE: runRead,
}

func init() {
	rootCmd.AddCommand(readCmd)

	readCmd.Flags().BoolVarP(&readNewline, "newline", "n", false, "append a newline to the message")
}

func runRead(cmd *cobra.Command, args []string) error {
	instance, err := parseInstance(args[0])
	if err != nil {
		return err
	}
	channel, err := parseChannel(args[1])
	if err != nil {
		return err
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
	msg, err := h.Read(ctx, slot.MaxMessageLen)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := out.Write(msg); err != nil {
		return err
	}
	if readNewline {
		_, err = out.Write([]byte("\n"))
	}
	return err
}
