package logger

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger wraps zerolog with the debug flag the TUI relies on: when the terminal is owned by the
// UI, Printf-style chatter is suppressed while warnings and errors still reach the writer.
type Logger struct {
	debug bool
	zerolog.Logger
}

// New creates a new logger writing to stderr
func New(debug bool) *Logger {
	return NewWithWriter(debug, os.Stderr)
}

// NewWithWriter creates a new logger writing to w
func NewWithWriter(debug bool, w io.Writer) *Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	zl := zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}).
		Level(level).
		With().
		Timestamp().
		Logger()
	return &Logger{debug: debug, Logger: zl}
}

// Nop returns a logger that discards everything. Used by tests.
func Nop() *Logger {
	return &Logger{Logger: zerolog.Nop()}
}

// Named returns a sub-logger tagged with a component name
func (l *Logger) Named(component string) *Logger {
	return &Logger{
		debug:  l.debug,
		Logger: l.Logger.With().Str("component", component).Logger(),
	}
}

// WithStr returns a sub-logger carrying one extra string field
func (l *Logger) WithStr(key, value string) *Logger {
	return &Logger{
		debug:  l.debug,
		Logger: l.Logger.With().Str(key, value).Logger(),
	}
}

// Debugging reports whether debug output is enabled
func (l *Logger) Debugging() bool {
	return l.debug
}

// Printf logs if debug is enabled
func (l *Logger) Printf(format string, v ...interface{}) {
	if l.debug {
		l.Logger.Debug().Msg(fmt.Sprintf(format, v...))
	}
}

// Println logs if debug is enabled
func (l *Logger) Println(v ...interface{}) {
	if l.debug {
		l.Logger.Debug().Msg(fmt.Sprint(v...))
	}
}

// Fatalf always logs (fatal errors)
func (l *Logger) Fatalf(format string, v ...interface{}) {
	l.Logger.Fatal().Msg(fmt.Sprintf(format, v...))
}
