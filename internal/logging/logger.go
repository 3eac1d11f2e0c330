// Package logging provides structured logging for the navlist CLI and library code.
package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the console formatting used across navlist.
type Logger struct {
	zlog   zerolog.Logger
	output io.Writer
}

// NewLogger creates a new console logger writing to w.
func NewLogger(w io.Writer) *Logger {
	return &Logger{
		zlog:   newConsole(w),
		output: w,
	}
}

// NewDefaultCLILogger creates a default CLI logger on stderr.
// Stdout is reserved for rendered trees and JSON output.
func NewDefaultCLILogger() *Logger {
	return NewLogger(os.Stderr)
}

// NewNop returns a logger that discards everything. Used by tests and by
// library callers that do not supply a logger.
func NewNop() *Logger {
	return &Logger{zlog: zerolog.Nop(), output: io.Discard}
}

func newConsole(w io.Writer) zerolog.Logger {
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: "15:04:05",
	}).With().Timestamp().Logger()
}

// Info returns an info level event.
func (l *Logger) Info() *zerolog.Event {
	return l.zlog.Info()
}

// Error returns an error level event.
func (l *Logger) Error() *zerolog.Event {
	return l.zlog.Error()
}

// Debug returns a debug level event.
func (l *Logger) Debug() *zerolog.Event {
	return l.zlog.Debug()
}

// Warn returns a warn level event.
func (l *Logger) Warn() *zerolog.Event {
	return l.zlog.Warn()
}

// Component returns a child logger tagged with a component name.
func (l *Logger) Component(name string) *Logger {
	return &Logger{
		zlog:   l.zlog.With().Str("component", name).Logger(),
		output: l.output,
	}
}

// Output returns the writer the logger was created with.
func (l *Logger) Output() io.Writer {
	return l.output
}

// SetGlobalLevel sets the global log level.
func SetGlobalLevel(level zerolog.Level) {
	zerolog.SetGlobalLevel(level)
}

// ParseLevel maps a config value ("debug", "info", "warn", "error") to a zerolog level.
// Unknown values fall back to info.
func ParseLevel(s string) zerolog.Level {
	level, err := zerolog.ParseLevel(s)
	if err != nil || s == "" {
		return zerolog.InfoLevel
	}
	return level
}

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
