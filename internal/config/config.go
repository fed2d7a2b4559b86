package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. MSGSLOT_SERVER_ADDRESS.
const EnvPrefix = "MSGSLOT"

// Config represents the complete msgslot configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Device  DeviceConfig  `mapstructure:"device" yaml:"device"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Monitor MonitorConfig `mapstructure:"monitor" yaml:"monitor"`
}

// Network names a transport the server can listen on.
type Network string

const (
	NetworkUnix Network = "unix"
	NetworkTCP  Network = "tcp"
	// NetworkPipe is a Windows named pipe.
	NetworkPipe Network = "pipe"
)

// ServerConfig controls the socket endpoint that exposes the device
type ServerConfig struct {
	// Network is the transport: "unix", "tcp" or "pipe" (default: "unix", "pipe" on Windows)
	Network Network `mapstructure:"network" yaml:"network"`
	// Address is a socket path, host:port, or \\.\pipe\name depending on Network
	Address string `mapstructure:"address" yaml:"address"`
	// IdleTimeout closes connections that send nothing for this long (0 = never)
	IdleTimeout time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	// MaxFrameBytes bounds a single request or response frame (default: 4096)
	MaxFrameBytes int `mapstructure:"max_frame_bytes" yaml:"max_frame_bytes"`
}

// DeviceConfig controls admission and per-instance limits of the device.
// Message size and instance count are fixed and cannot be configured.
type DeviceConfig struct {
	// ExclusiveOpen allows only one open handle at a time; it takes precedence over MaxHandles
	ExclusiveOpen bool `mapstructure:"exclusive_open" yaml:"exclusive_open"`
	// MaxHandles limits concurrently open handles (0 = unlimited)
	MaxHandles int `mapstructure:"max_handles" yaml:"max_handles"`
	// MaxChannels limits channels per instance (0 = unlimited)
	MaxChannels int `mapstructure:"max_channels" yaml:"max_channels"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Enabled controls whether logging is enabled (default: true)
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level" yaml:"level"`
	// Dir is where msgslot.log is written. Empty logs to stderr.
	Dir string `mapstructure:"dir" yaml:"dir"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups" yaml:"max_backups"`
	// MaxAgeDays removes backups older than this many days (0 = keep forever)
	MaxAgeDays int `mapstructure:"max_age_days" yaml:"max_age_days"`
	// Compress gzips rotated files
	Compress bool `mapstructure:"compress" yaml:"compress"`
}

// MonitorConfig controls the monitor TUI
type MonitorConfig struct {
	// Refresh is how often the monitor polls device statistics (default: 1s)
	Refresh time.Duration `mapstructure:"refresh" yaml:"refresh"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Network:       DefaultNetwork(),
			Address:       DefaultAddress(DefaultNetwork()),
			IdleTimeout:   0,
			MaxFrameBytes: 4096,
		},
		Device: DeviceConfig{
			ExclusiveOpen: false,
			MaxHandles:    0,
			MaxChannels:   0,
		},
		Logging: LoggingConfig{
			Enabled:    true,
			Level:      "info",
			Dir:        "",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 0,
			Compress:   false,
		},
		Monitor: MonitorConfig{
			Refresh: time.Second,
		},
	}
}

// DefaultNetwork returns the transport used when none is configured.
func DefaultNetwork() Network {
	if runtime.GOOS == "windows" {
		return NetworkPipe
	}
	return NetworkUnix
}

// DefaultAddress returns the conventional endpoint for a network.
func DefaultAddress(network Network) string {
	switch network {
	case NetworkTCP:
		return "127.0.0.1:7235"
	case NetworkPipe:
		return `\\.\pipe\message_slot`
	default:
		dir := os.Getenv("XDG_RUNTIME_DIR")
		if dir == "" {
			dir = os.TempDir()
		}
		return filepath.Join(dir, "msgslot.sock")
	}
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Server defaults
	viper.SetDefault("server.network", string(defaults.Server.Network))
	viper.SetDefault("server.address", defaults.Server.Address)
	viper.SetDefault("server.idle_timeout", defaults.Server.IdleTimeout)
	viper.SetDefault("server.max_frame_bytes", defaults.Server.MaxFrameBytes)

	// Device defaults
	viper.SetDefault("device.exclusive_open", defaults.Device.ExclusiveOpen)
	viper.SetDefault("device.max_handles", defaults.Device.MaxHandles)
	viper.SetDefault("device.max_channels", defaults.Device.MaxChannels)

	// Logging defaults
	viper.SetDefault("logging.enabled", defaults.Logging.Enabled)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.max_age_days", defaults.Logging.MaxAgeDays)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)

	// Monitor defaults
	viper.SetDefault("monitor.refresh", defaults.Monitor.Refresh)
}

// BindEnv makes every key overridable from MSGSLOT_* environment variables.
func BindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg, viper.DecodeHook(decodeHook())); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Watch calls onChange with the reloaded configuration whenever the config
// file viper is reading changes on disk. Edits that fail validation are
// passed to onError (if non-nil) and otherwise ignored.
func Watch(onChange func(*Config), onError func(error)) {
	viper.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := Load()
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	viper.WatchConfig()
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "msgslot")
	}
	// Fall back to ~/.config/msgslot
	home, err := os.UserHomeDir()
	if err != nil {
		return ".msgslot"
	}
	return filepath.Join(home, ".config", "msgslot")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
