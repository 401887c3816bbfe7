package shared

import (
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// LogOptions selects how a command logs
type LogOptions struct {
	Level   string // debug, info, warn or error; empty means info
	Debug   bool   // overrides Level
	Format  string // text or json
	NoColor bool
}

// SetupLogger builds a charm logger writing to w
func SetupLogger(w io.Writer, opts LogOptions) *log.Logger {
	logger := log.NewWithOptions(w, log.Options{
		Level:           ParseLevel(opts.Level),
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	if opts.Debug {
		logger.SetLevel(log.DebugLevel)
	}
	if opts.Format == "json" {
		logger.SetFormatter(log.JSONFormatter)
		logger.SetTimeFormat(time.RFC3339Nano)
	}
	if opts.NoColor {
		logger.SetColorProfile(termenv.Ascii)
	}
	return logger
}

// DisableColor turns off color for everything rendered with lipgloss
func DisableColor() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ParseLevel maps a config log level to a charm level, defaulting to info
func ParseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	}
	return log.InfoLevel
}
