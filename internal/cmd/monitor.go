package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/msgslot/internal/tui"
)

var monitorRefresh time.Duration

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch device statistics live",
	Long: `Monitor opens a full-screen view of every channel the device holds and
refreshes it periodically. Press r to refresh now and q to quit.`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().DurationVar(&monitorRefresh, "refresh", 0, "refresh interval (default: monitor.refresh from config)")
}

func runMonitor(cmd *cobra.Command, args []string) error {
	if !isTerminal(cmd.OutOrStdout()) {
		return fmt.Errorf("monitor requires an interactive terminal; use 'msgslot stat' instead")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	refresh := cfg.Monitor.Refresh
	if monitorRefresh > 0 {
		refresh = monitorRefresh
	}

	ctx := cmd.Context()
	c, err := dial(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()

	return tui.Run(ctx, c, refresh)
}
