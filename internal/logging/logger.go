// Package logging builds zerolog loggers and carries them through context.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	// EnvLogLevel overrides the configured level.
	EnvLogLevel = "UPGATE_LOG_LEVEL"
	// EnvLogFormat overrides the configured format.
	EnvLogFormat = "UPGATE_LOG_FORMAT"
)

// Config holds logging configuration
type Config struct {
	Level      zerolog.Level
	Format     string // "json" or "console"
	TimeFormat string
	// File, when set, receives a copy of every entry in JSON.
	File io.Writer
	// Console replaces stderr as the primary output. io.Discard silences it.
	Console io.Writer
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Format:     "console",
		TimeFormat: time.RFC3339,
	}
}

// New creates a new zerolog logger with the given configuration
func New(cfg Config) zerolog.Logger {
	if cfg.Console != nil {
		return newWithOutput(cfg, cfg.Console)
	}
	return newWithOutput(cfg, os.Stderr)
}

func newWithOutput(cfg Config, out io.Writer) zerolog.Logger {
	var output io.Writer = out
	if cfg.Format != "json" {
		output = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: cfg.TimeFormat,
		}
	}
	if cfg.File != nil {
		output = zerolog.MultiLevelWriter(output, cfg.File)
	}

	return zerolog.New(output).
		Level(cfg.Level).
		With().
		Timestamp().
		Logger()
}

// NewFromConfigValues creates a logger from the string values found in the config file.
// Unknown values fall back to the defaults.
func NewFromConfigValues(level, format string) zerolog.Logger {
	cfg := DefaultConfig()
	if lvl, ok := ParseLevel(level); ok {
		cfg.Level = lvl
	}
	if f := normalizeFormat(format); f != "" {
		cfg.Format = f
	}
	return New(cfg)
}

// NewFromEnv creates a logger based on environment variables
// UPGATE_LOG_LEVEL: trace, debug, info, warn, error (default: info)
// UPGATE_LOG_FORMAT: json, console (default: console)
func NewFromEnv() zerolog.Logger {
	return New(ApplyEnv(DefaultConfig()))
}

// ApplyEnv overlays UPGATE_LOG_LEVEL and UPGATE_LOG_FORMAT on cfg.
func ApplyEnv(cfg Config) Config {
	if lvl, ok := ParseLevel(os.Getenv(EnvLogLevel)); ok {
		cfg.Level = lvl
	}
	if f := normalizeFormat(os.Getenv(EnvLogFormat)); f != "" {
		cfg.Format = f
	}
	return cfg
}

// ParseLevel maps a level name to a zerolog level.
func ParseLevel(level string) (zerolog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel, true
	case "debug":
		return zerolog.DebugLevel, true
	case "info":
		return zerolog.InfoLevel, true
	case "warn", "warning":
		return zerolog.WarnLevel, true
	case "error":
		return zerolog.ErrorLevel, true
	default:
		return zerolog.InfoLevel, false
	}
}

func normalizeFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return "json"
	case "console", "pretty", "text":
		return "console"
	default:
		return ""
	}
}
