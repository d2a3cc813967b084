// Package logging configures structured logging for redkeeper using zerolog.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))

	var output io.Writer = cfg.Output
	if output == nil {
		output = os.Stderr
	}
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	logger := zerolog.New(output).With().Timestamp().Logger()
	log.Logger = logger

	return logger
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// NewLogger creates a new logger tagged with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Individual command execution (op, duration)
//   - Health probe details (probe key, latency)
//   - State machine transitions
//
// Info: Normal operation events
//   - Connection established / ready
//   - Graceful shutdown progress
//
// Warn: Conditions that don't prevent operation
//   - Reconnect attempts and backoff delays
//   - Probe-key scavenging failures
//   - Cache subsystem disabled by configuration
//
// Error: Conditions requiring attention
//   - Command failures surfaced to callers
//   - Connection-level errors absorbed into stats
//   - Client construction failures
//
// Fatal is used for severity only and never exits the process: the single
// case is reconnection retry budget exhaustion, after which the connection
// stays down until an operator intervenes.
//
// Context Fields:
//   - component: emitting subsystem (conn, health, config, ...)
//   - state: connection state after a transition
//   - attempt: reconnect attempt number
//   - backoff: computed reconnect delay
//   - op: command name at the executor choke point
//   - latency: health probe round-trip time
