package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log entry
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
	FATAL
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return "UNKNOWN"
}

// Format selects how entries are written
type Format int

const (
	JSONFormat Format = iota
	TextFormat
)

// Fields carries structured key/value context for an entry
type Fields map[string]interface{}

// Entry is one structured log record
type Entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Component string `json:"component,omitempty"`
	Caller    string `json:"caller,omitempty"`
	Fields    Fields `json:"fields,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Logger writes structured entries for one component
type Logger struct {
	mu        *sync.Mutex
	level     Level
	format    Format
	out       io.Writer
	component string
	bound     Fields
	exit      func(int)
}

// Config holds logger settings
type Config struct {
	Level     Level
	Format    Format
	Output    io.Writer
	Component string
}

// New creates a logger
func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}
	return &Logger{
		mu:        &sync.Mutex{},
		level:     cfg.Level,
		format:    cfg.Format,
		out:       cfg.Output,
		component: cfg.Component,
		exit:      os.Exit,
	}
}

// NewDefault creates an INFO level JSON logger on stdout
func NewDefault() *Logger {
	return New(Config{Level: INFO, Format: JSONFormat})
}

// WithComponent returns a copy of the logger tagged with component.
// Level and format changes on the parent are not propagated to the copy.
func (l *Logger) WithComponent(component string) *Logger {
	c := l.clone()
	c.component = component
	return c
}

// With returns a copy of the logger that adds fields to every entry
func (l *Logger) With(fields Fields) *Logger {
	c := l.clone()
	c.bound = mergeFields(l.bound, fields)
	return c
}

func (l *Logger) clone() *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		mu:        l.mu,
		level:     l.level,
		format:    l.format,
		out:       l.out,
		component: l.component,
		bound:     l.bound,
		exit:      l.exit,
	}
}

func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

func (l *Logger) SetFormat(format Format) {
	l.mu.Lock()
	l.format = format
	l.mu.Unlock()
}

// Enabled reports whether entries at level would be written
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

func (l *Logger) write(level Level, msg string, fields Fields, err error) {
	if !l.Enabled(level) {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Message:   msg,
		Component: l.component,
		Caller:    caller(3),
		Fields:    mergeFields(l.bound, fields),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	var line string
	if l.format == JSONFormat {
		b, mErr := json.Marshal(entry)
		if mErr != nil {
			line = fmt.Sprintf(`{"level":"ERROR","message":"unencodable log entry: %s"}`+"\n", mErr)
		} else {
			line = string(b) + "\n"
		}
	} else {
		line = formatText(entry)
	}

	l.mu.Lock()
	_, _ = io.WriteString(l.out, line)
	l.mu.Unlock()

	if level == FATAL {
		l.exit(1)
	}
}

func caller(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	name := "?"
	if fn := runtime.FuncForPC(pc); fn != nil {
		name = fn.Name()
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
	}
	if i := strings.LastIndex(file, "/"); i >= 0 {
		file = file[i+1:]
	}
	return fmt.Sprintf("%s %s:%d", name, file, line)
}

func formatText(e Entry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %-5s", e.Timestamp, e.Level)
	if e.Component != "" {
		fmt.Fprintf(&b, " [%s]", e.Component)
	}
	b.WriteString(" ")
	b.WriteString(e.Message)

	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, e.Fields[k])
		}
	}
	if e.Error != "" {
		fmt.Fprintf(&b, " error=%q", e.Error)
	}
	if e.Caller != "" {
		fmt.Fprintf(&b, " (%s)", e.Caller)
	}
	b.WriteString("\n")
	return b.String()
}

func mergeFields(base Fields, extra Fields) Fields {
	if len(base) == 0 && len(extra) == 0 {
		return nil
	}
	out := make(Fields, len(base)+len(extra))
	for k, v := range base {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}

func first(fields []Fields) Fields {
	if len(fields) == 0 {
		return nil
	}
	return fields[0]
}

func (l *Logger) Debug(msg string, fields ...Fields) { l.write(DEBUG, msg, first(fields), nil) }

func (l *Logger) Info(msg string, fields ...Fields) { l.write(INFO, msg, first(fields), nil) }

func (l *Logger) Warn(msg string, fields ...Fields) { l.write(WARN, msg, first(fields), nil) }

func (l *Logger) Error(msg string, err error, fields ...Fields) {
	l.write(ERROR, msg, first(fields), err)
}

// Fatal logs and exits the process
func (l *Logger) Fatal(msg string, err error, fields ...Fields) {
	l.write(FATAL, msg, first(fields), err)
}

func (l *Logger) Debugf(format string, args ...interface{}) {
	l.write(DEBUG, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Infof(format string, args ...interface{}) {
	l.write(INFO, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Warnf(format string, args ...interface{}) {
	l.write(WARN, fmt.Sprintf(format, args...), nil, nil)
}

func (l *Logger) Errorf(format string, args ...interface{}) {
	l.write(ERROR, fmt.Sprintf(format, args...), nil, nil)
}
