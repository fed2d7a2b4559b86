package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Iron-Ham/msgslot/internal/client"
	"github.com/Iron-Ham/msgslot/internal/config"
)

// dialTimeout bounds connecting to the server from client commands.
const dialTimeout = 5 * time.Second

var rootCmd = &cobra.Command{
	Use:   "msgslot",
	Short: "Multiplexed message slot device",
	Long: `msgslot serves a message slot device: 256 instances, each holding any
number of channels that store exactly one message of at most 128 bytes.

Run "msgslot serve" to expose the device on a local socket, then use
"msgslot send" and "msgslot read" to exchange messages through it.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $XDG_CONFIG_HOME/msgslot/config.yaml)")
	rootCmd.PersistentFlags().String("network", "", "server transport: unix, tcp or pipe")
	rootCmd.PersistentFlags().String("address", "", "server socket path, host:port or pipe name")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("server.network", rootCmd.PersistentFlags().Lookup("network"))
	_ = viper.BindPFlag("server.address", rootCmd.PersistentFlags().Lookup("address"))
}

func initConfig() {
	// Set defaults first so they're available even without a config file
	config.SetDefaults()

	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(config.ConfigDir())
		viper.AddConfigPath(".")
	}

	// MSGSLOT_SERVER_ADDRESS overrides server.address, and so on
	config.BindEnv()

	// Read config file if it exists (ignore error if not found)
	_ = viper.ReadInConfig()
}

// loadConfig returns the validated configuration.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// dial connects to the server named by the configuration.
func dial(ctx context.Context) (*client.Client, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()

	c, err := client.Dial(ctx, cfg.Server.Network, cfg.Server.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Server.Address, err)
	}
	return c, nil
}
