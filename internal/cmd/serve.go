package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/msgslot/internal/config"
	"github.com/Iron-Ham/msgslot/internal/event"
	"github.com/Iron-Ham/msgslot/internal/logging"
	"github.com/Iron-Ham/msgslot/internal/server"
	"github.com/Iron-Ham/msgslot/internal/slot"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the message slot device",
	Long: `Serve creates a message slot device and exposes it on the configured
socket until interrupted.

Every client connection gets its own set of handles. Handles left open when a
connection drops are closed automatically. Edits to the config file are applied
while the server runs: the admission policy, idle timeout and log level change
in place; the listen address does not.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Bool("exclusive", false, "allow only one open handle at a time")
	serveCmd.Flags().Int("max-handles", 0, "limit concurrently open handles (0 = unlimited)")
	serveCmd.Flags().Int("max-channels", 0, "limit channels per instance (0 = unlimited)")
	serveCmd.Flags().Duration("idle-timeout", 0, "close connections idle this long (0 = never)")
	serveCmd.Flags().String("log-level", "", "log level: debug, info, warn, error")
	_ = viper.BindPFlag("device.exclusive_open", serveCmd.Flags().Lookup("exclusive"))
	_ = viper.BindPFlag("device.max_handles", serveCmd.Flags().Lookup("max-handles"))
	_ = viper.BindPFlag("device.max_channels", serveCmd.Flags().Lookup("max-channels"))
	_ = viper.BindPFlag("server.idle_timeout", serveCmd.Flags().Lookup("idle-timeout"))
	_ = viper.BindPFlag("logging.level", serveCmd.Flags().Lookup("log-level"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Close() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger, func(addr string) {
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s %s\n", slot.DeviceName, cfg.Server.Network, addr)
	})
}

// serve runs a device and server for cfg until ctx is cancelled. ready is
// called with the bound address once the listener is up.
func serve(ctx context.Context, cfg *config.Config, logger *logging.Logger, ready func(addr string)) error {
	bus := event.NewBus()
	dev := slot.NewDevice(
		slot.WithBus(bus),
		slot.WithLogger(logger),
		slot.WithPolicy(slot.PolicyFor(cfg.Device.ExclusiveOpen, cfg.Device.MaxHandles)),
		slot.WithMaxChannels(cfg.Device.MaxChannels),
	)
	defer func() { _ = dev.Close() }()

	srv, err := server.New(dev,
		server.WithLogger(logger),
		server.WithMaxFrame(cfg.Server.MaxFrameBytes),
		server.WithIdleTimeout(cfg.Server.IdleTimeout),
		server.WithEventLog(bus),
	)
	if err != nil {
		return err
	}

	l, err := server.Listen(cfg.Server.Network, cfg.Server.Address)
	if err != nil {
		return err
	}

	cfgLog := logger.WithComponent("config")
	if viper.ConfigFileUsed() != "" {
		config.Watch(func(next *config.Config) {
			srv.Reconfigure(next)
			logger.SetLevel(next.Logging.Level)
		}, func(err error) {
			cfgLog.Warn("ignoring invalid configuration", "file", viper.ConfigFileUsed(), "error", err)
		})
	}

	logger.Info("serving",
		"network", string(cfg.Server.Network),
		"address", l.Addr().String(),
		"policy", dev.Policy().Name(),
	)
	if ready != nil {
		ready(l.Addr().String())
	}

	if err := srv.Serve(ctx, l); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	logger.Info("shutting down")
	return nil
}

// newLogger builds the logger described by cfg. A disabled logger discards
// everything; an empty directory logs to stderr.
func newLogger(cfg config.LoggingConfig) (*logging.Logger, error) {
	if !cfg.Enabled {
		return logging.NopLogger(), nil
	}
	logger, err := logging.NewLoggerWithRotation(cfg.Dir, cfg.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAgeDays: cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	return logger, nil
}
