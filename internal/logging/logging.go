// Package logging builds the CLI's slog logger on top of charmbracelet/log.
// The library itself only sees *slog.Logger.
package logging

import (
	"io"
	"log/slog"

	"github.com/charmbracelet/log"
)

// Level selects how much the CLI reports.
type Level int

const (
	LevelQuiet   Level = iota // errors only
	LevelNormal               // warnings and errors
	LevelVerbose              // everything, with timestamps
)

// New returns a logger writing human-readable lines to w.
func New(w io.Writer, level Level) *slog.Logger {
	opts := log.Options{
		Level:      charmLevel(level),
		TimeFormat: "15:04:05",
	}
	if level == LevelVerbose {
		opts.ReportTimestamp = true
	}
	return slog.New(log.NewWithOptions(w, opts))
}

// FromFlags maps the --quiet and --verbose flags to a level.
// Quiet wins when both are set.
func FromFlags(quiet, verbose bool) Level {
	switch {
	case quiet:
		return LevelQuiet
	case verbose:
		return LevelVerbose
	}
	return LevelNormal
}

func charmLevel(l Level) log.Level {
	switch l {
	case LevelQuiet:
		return log.ErrorLevel
	case LevelVerbose:
		return log.DebugLevel
	}
	return log.WarnLevel
}
