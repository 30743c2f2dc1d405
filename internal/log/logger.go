// Package log provides the leveled logger used throughout mousefollow.
package log

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/term"
)

type LogLevel int

// The level of visibility of the log output.
// ERROR is the lowest level, DEBUG is the highest and it increases in the order that it is written.
const (
	ERROR LogLevel = iota
	WARN
	INFO
	DEBUG
)

var levelNames = map[string]LogLevel{
	"error": ERROR,
	"warn":  WARN,
	"info":  INFO,
	"debug": DEBUG,
}

// Logger is the sink for all log output. Writes are formatted as
// "<time> <level> <message>" and go to a log file, the console, or both.
type Logger struct {
	zl    zerolog.Logger
	level LogLevel
	file  *os.File
}

// ParseLevel converts a level name from the configuration file into a
// LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	level, ok := levelNames[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, errors.Errorf("unknown log level %q", name)
	}
	return level, nil
}

// New creates a Logger which writes to w. Wrap w in a zerolog.ConsoleWriter
// for human readable output.
func New(w io.Writer, level LogLevel) *Logger {
	l := &Logger{
		zl: zerolog.New(w).With().Timestamp().Logger(),
	}
	l.SetLevel(level)
	return l
}

// NewLogger creates a Logger which appends to the file at filePath and, if
// console is set, also writes to stderr. Passing filePath as a blank string
// disables the log file.
func NewLogger(level LogLevel, filePath string, console bool) (*Logger, error) {
	writers := make([]io.Writer, 0, 2)
	var logFile *os.File
	if filePath != "" {
		if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
			return nil, errors.Wrap(err, "create log directory")
		}
		f, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, errors.Wrap(err, "open log file")
		}
		logFile = f
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        f,
			NoColor:    true,
			TimeFormat: time.RFC3339,
		})
	}
	if console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        os.Stderr,
			NoColor:    !term.IsTerminal(int(os.Stderr.Fd())),
			TimeFormat: time.RFC3339,
		})
	}
	var w io.Writer = io.Discard
	if len(writers) > 0 {
		w = zerolog.MultiLevelWriter(writers...)
	}
	l := New(w, level)
	l.file = logFile
	return l, nil
}

// Nop returns a Logger which discards everything.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

// Level returns the current visibility level of the Logger.
func (l *Logger) Level() LogLevel {
	return l.level
}

// SetLevel sets the log visibility level of the Logger instance.
func (l *Logger) SetLevel(level LogLevel) {
	l.level = level
	switch level {
	case ERROR:
		l.zl = l.zl.Level(zerolog.ErrorLevel)
	case WARN:
		l.zl = l.zl.Level(zerolog.WarnLevel)
	case INFO:
		l.zl = l.zl.Level(zerolog.InfoLevel)
	default:
		l.zl = l.zl.Level(zerolog.DebugLevel)
	}
}

// Error prints out the error message passed to the sinks.
func (l *Logger) Error(message string, args ...any) {
	l.zl.Error().Msgf(message, args...)
}

// Warn prints out the warning message passed to the sinks.
func (l *Logger) Warn(message string, args ...any) {
	l.zl.Warn().Msgf(message, args...)
}

// Info prints out the information passed to the sinks.
func (l *Logger) Info(message string, args ...any) {
	l.zl.Info().Msgf(message, args...)
}

// Debug prints out the debug message passed to the sinks.
func (l *Logger) Debug(message string, args ...any) {
	l.zl.Debug().Msgf(message, args...)
}

// Close closes the log file, if there is one.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
