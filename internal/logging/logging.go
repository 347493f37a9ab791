// Package logging builds the leveled console logger used for diagnostics.
//
// Diagnostics (file created, file corrupted, save failed) go through
// charmbracelet/log on stderr. Command results are not logs; they are
// rendered by package ui on stdout.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nibzard/tasker-go/internal/config"
)

// Prefix is printed before every log line.
const Prefix = "tasker"

// Options holds configuration for console logging.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	ReportCaller    bool
	Prefix          string
}

// DefaultOptions returns default options for console logging.
func DefaultOptions() Options {
	return Options{
		Level:           log.WarnLevel,
		Formatter:       log.TextFormatter,
		ReportTimestamp: false,
		ReportCaller:    false,
		Prefix:          Prefix,
	}
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		ReportCaller:    opts.ReportCaller,
		Prefix:          opts.Prefix,
	})
}

// FromConfig creates a logger from the logging section of cfg.
func FromConfig(w io.Writer, cfg *config.Config) *log.Logger {
	opts := DefaultOptions()
	if cfg != nil {
		opts.Level = ParseLevel(cfg.LogLevel)
		opts.Formatter = ParseFormatter(cfg.LogFormat)
		opts.ReportTimestamp = cfg.LogTimestamps
		opts.ReportCaller = cfg.LogCaller
	}
	return New(w, opts)
}

// ParseLevel parses a string log level. Unknown values mean warn.
func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "fatal":
		return log.FatalLevel
	default:
		return log.WarnLevel
	}
}

// ParseFormatter parses a string formatter name. Unknown values mean text.
func ParseFormatter(format string) log.Formatter {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		return log.JSONFormatter
	case "logfmt":
		return log.LogfmtFormatter
	default:
		return log.TextFormatter
	}
}
