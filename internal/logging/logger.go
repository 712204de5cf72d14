// Package logging configures the zerolog logger shared across the
// extraction pipeline, following the level-parsing and console/JSON
// output split used elsewhere in the example corpus.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New builds a zerolog.Logger at the given level, writing human-readable
// console output when pretty is true and structured JSON otherwise.
func New(level string, pretty bool, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	var writer io.Writer = out
	if pretty {
		writer = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}

	return zerolog.New(writer).
		Level(parseLevel(level)).
		With().
		Timestamp().
		Str("component", "pdfextract").
		Logger()
}

func parseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
