// Package logging provides structured logging for msgslot.
//
// This package wraps Go's log/slog to write JSON-formatted logs with
// persistent context attributes, so that every line written on behalf of a
// handle carries the slot instance, handle id and selected channel.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR), adjustable at runtime
//   - Context propagation (instance, handle, channel, component)
//   - Size-based rotation with optional compression via lumberjack
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. Child loggers created
// via With* methods share the underlying writer and level.
//
// # Basic Usage
//
//	logger, err := logging.NewLogger("/var/log/msgslot", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("server listening", "network", "unix", "address", addr)
//
// # Context Propagation
//
//	hlog := logger.WithInstance(5).WithHandle(12)
//	hlog.WithChannel(7).Debug("message written", "length", 5)
//
// Output:
//
//	{"time":"...","level":"DEBUG","msg":"message written","instance":5,"handle":12,"channel":7,"length":5}
//
// # Log Rotation
//
//	logger, err := logging.NewLoggerWithRotation(dir, "INFO", logging.RotationConfig{
//	    MaxSizeMB:  10,
//	    MaxBackups: 3,
//	    Compress:   true,
//	})
//
// # Testing
//
// Use [NopLogger] to discard all log output.
package logging
