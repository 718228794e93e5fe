// Package logging holds the process wide zerolog logger
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// L is the logger used across the application.
// Call SetLogLevel once during startup before other goroutines log.
var L = newLogger(os.Stderr)

func newLogger(out io.Writer) zerolog.Logger {
	writer := zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	return zerolog.New(writer).With().Timestamp().Caller().Logger()
}

// SetLogLevel sets the minimum level of L
func SetLogLevel(level zerolog.Level) {
	L = L.Level(level)
}

// SetOutput points L to a different writer, keeping the current level.
// Mostly useful for tests and for the json output of the http server.
func SetOutput(out io.Writer, pretty bool) {
	level := L.GetLevel()
	if pretty {
		L = newLogger(out).Level(level)
		return
	}
	L = zerolog.New(out).With().Timestamp().Logger().Level(level)
}
