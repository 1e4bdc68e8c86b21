package logger

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"
)

var global atomic.Pointer[Logger]

func init() {
	l := NewDefault()
	if lvl, err := ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		l.SetLevel(lvl)
	}
	if f, err := ParseFormat(os.Getenv("LOG_FORMAT")); err == nil {
		l.SetFormat(f)
	}
	global.Store(l)
}

// ParseLevel maps a LOG_LEVEL value to a Level
func ParseLevel(s string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	case "FATAL":
		return FATAL, nil
	}
	return INFO, fmt.Errorf("unknown log level %q", s)
}

// ParseFormat maps a LOG_FORMAT value to a Format. "auto" picks text
// when stdout is a terminal and JSON otherwise.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return JSONFormat, nil
	case "text":
		return TextFormat, nil
	case "auto":
		if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return TextFormat, nil
		}
		return JSONFormat, nil
	}
	return JSONFormat, fmt.Errorf("unknown log format %q", s)
}

// Configure applies level and format strings to the global logger
func Configure(level, format string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return err
	}
	l := Get()
	l.SetLevel(lvl)
	l.SetFormat(f)
	return nil
}

// Get returns the global logger
func Get() *Logger {
	return global.Load()
}

// Set replaces the global logger
func Set(l *Logger) {
	global.Store(l)
}

// WithComponent derives a component logger from the global one
func WithComponent(component string) *Logger {
	return Get().WithComponent(component)
}

func Debug(msg string, fields ...Fields) { Get().write(DEBUG, msg, first(fields), nil) }

func Info(msg string, fields ...Fields) { Get().write(INFO, msg, first(fields), nil) }

func Warn(msg string, fields ...Fields) { Get().write(WARN, msg, first(fields), nil) }

func Error(msg string, err error, fields ...Fields) {
	Get().write(ERROR, msg, first(fields), err)
}

func Fatal(msg string, err error, fields ...Fields) {
	Get().write(FATAL, msg, first(fields), err)
}

func Infof(format string, args ...interface{}) {
	Get().write(INFO, fmt.Sprintf(format, args...), nil, nil)
}
