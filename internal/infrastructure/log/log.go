// Package log builds the zerolog logger used by the CLI.
package log

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger is the logger type passed to resolver components.
type Logger = zerolog.Logger

// NewLogger returns a human readable logger writing to out. Verbose enables
// debug output; otherwise only warnings and errors are written.
func NewLogger(out io.Writer, verbose bool) Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}

	return zerolog.New(zerolog.ConsoleWriter{Out: out, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
}
