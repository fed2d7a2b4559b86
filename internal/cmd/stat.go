package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/Iron-Ham/msgslot/internal/slot"
	"github.com/Iron-Ham/msgslot/internal/tui"
)

var statOutput string

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Show device statistics",
	Long: `Stat prints the admission policy, open handle count and every channel
the device currently holds, grouped by instance.

Output is styled text on a terminal and YAML when piped. Use --output to
choose explicitly.`,
	Args: cobra.NoArgs,
	RunE: runStat,
}

func init() {
	rootCmd.AddCommand(statCmd)

	statCmd.Flags().StringVarP(&statOutput, "output", "o", "auto", "output format: auto, text, json, yaml")
}

func runStat(cmd *cobra.Command, args []string) error {
	format := statOutput
	switch format {
	case "auto":
		format = "yaml"
		if isTerminal(cmd.OutOrStdout()) {
			format = "text"
		}
	case "text", "json", "yaml":
	default:
		return fmt.Errorf("unknown output format %q (want auto, text, json or yaml)", statOutput)
	}

	ctx := cmd.Context()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	stat, err := c.Stat(ctx)
	if err != nil {
		return err
	}
	return writeStat(cmd.OutOrStdout(), stat, format)
}

func writeStat(w io.Writer, stat *slot.DeviceStat, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(stat)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(stat); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprint(w, tui.RenderStat(stat))
		return err
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
