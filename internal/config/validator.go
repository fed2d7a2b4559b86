package config

import (
	"fmt"
	"net"
	"slices"
	"strings"
	"time"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "server.max_frame_bytes")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

const (
	// minFrameBytes leaves room for a full 128-byte message plus the
	// response envelope.
	minFrameBytes = 512
	maxFrameBytes = 1 << 20

	minMonitorRefresh = 100 * time.Millisecond
)

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidNetworks returns the list of valid server networks
func ValidNetworks() []Network {
	return []Network{NetworkUnix, NetworkTCP, NetworkPipe}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateDevice()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateMonitor()...)

	return errors
}

// validateServer validates the ServerConfig
func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if !slices.Contains(ValidNetworks(), c.Server.Network) {
		names := make([]string, 0, len(ValidNetworks()))
		for _, n := range ValidNetworks() {
			names = append(names, string(n))
		}
		errors = append(errors, ValidationError{
			Field:   "server.network",
			Value:   c.Server.Network,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(names, ", ")),
		})
	}

	switch {
	case strings.TrimSpace(c.Server.Address) == "":
		errors = append(errors, ValidationError{
			Field:   "server.address",
			Value:   c.Server.Address,
			Message: "must not be empty",
		})
	case strings.ContainsRune(c.Server.Address, '\x00'):
		errors = append(errors, ValidationError{
			Field:   "server.address",
			Value:   c.Server.Address,
			Message: "contains invalid null character",
		})
	case c.Server.Network == NetworkTCP:
		if _, _, err := net.SplitHostPort(c.Server.Address); err != nil {
			errors = append(errors, ValidationError{
				Field:   "server.address",
				Value:   c.Server.Address,
				Message: "must be host:port for tcp",
			})
		}
	case c.Server.Network == NetworkPipe:
		if !strings.HasPrefix(c.Server.Address, `\\.\pipe\`) {
			errors = append(errors, ValidationError{
				Field:   "server.address",
				Value:   c.Server.Address,
				Message: `must start with \\.\pipe\ for pipe`,
			})
		}
	}

	if c.Server.IdleTimeout < 0 {
		errors = append(errors, ValidationError{
			Field:   "server.idle_timeout",
			Value:   c.Server.IdleTimeout,
			Message: "must be non-negative (0 disables)",
		})
	}

	if c.Server.MaxFrameBytes < minFrameBytes || c.Server.MaxFrameBytes > maxFrameBytes {
		errors = append(errors, ValidationError{
			Field:   "server.max_frame_bytes",
			Value:   c.Server.MaxFrameBytes,
			Message: fmt.Sprintf("must be between %d and %d", minFrameBytes, maxFrameBytes),
		})
	}

	return errors
}

// validateDevice validates the DeviceConfig
func (c *Config) validateDevice() []ValidationError {
	var errors []ValidationError

	if c.Device.MaxHandles < 0 {
		errors = append(errors, ValidationError{
			Field:   "device.max_handles",
			Value:   c.Device.MaxHandles,
			Message: "must be non-negative (0 = unlimited)",
		})
	}

	if c.Device.MaxChannels < 0 {
		errors = append(errors, ValidationError{
			Field:   "device.max_channels",
			Value:   c.Device.MaxChannels,
			Message: "must be non-negative (0 = unlimited)",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	if c.Logging.MaxAgeDays < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_age_days",
			Value:   c.Logging.MaxAgeDays,
			Message: "must be non-negative (0 = keep forever)",
		})
	}

	return errors
}

// validateMonitor validates the MonitorConfig
func (c *Config) validateMonitor() []ValidationError {
	var errors []ValidationError

	if c.Monitor.Refresh < minMonitorRefresh {
		errors = append(errors, ValidationError{
			Field:   "monitor.refresh",
			Value:   c.Monitor.Refresh,
			Message: fmt.Sprintf("must be at least %s", minMonitorRefresh),
		})
	}

	return errors
}
