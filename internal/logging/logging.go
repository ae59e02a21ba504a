package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// Level is a log severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the upper-case level tag used in log lines.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a config string ("debug", "info", ...) into a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level %q", s)
}

var (
	minLevel atomic.Int32
	output   atomic.Pointer[log.Logger]
)

func init() {
	minLevel.Store(int32(LevelInfo))
	output.Store(log.New(os.Stderr, "", log.LstdFlags|log.Lmicroseconds))
}

// SetLevel changes the global minimum level.
func SetLevel(l Level) {
	minLevel.Store(int32(l))
}

// SetOutput redirects every logger to w.
func SetOutput(w io.Writer) {
	output.Store(log.New(w, "", log.LstdFlags|log.Lmicroseconds))
}

// Logger is a named logger, e.g. logging.New("chunks-render").
type Logger struct {
	name string
}

// New returns a logger tagging each line with name.
func New(name string) *Logger {
	return &Logger{name: name}
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if int32(level) < minLevel.Load() {
		return
	}
	output.Load().Printf("[%s] %s: %s", level, l.name, fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, format, args...) }
func (l *Logger) Info(format string, args ...any)  { l.logf(LevelInfo, format, args...) }
func (l *Logger) Warn(format string, args ...any)  { l.logf(LevelWarn, format, args...) }
func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, format, args...) }
