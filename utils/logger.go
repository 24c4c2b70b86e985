package utils

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// LogLevel is the severity of a log message.
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
)

func (l LogLevel) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	}
	return "UNKNOWN"
}

// Logger writes leveled, timestamped lines. Loggers derived with WithField(s)
// share the underlying writer and append their fields to every line.
type Logger struct {
	*log.Logger
	level  LogLevel
	fields map[string]interface{}
}

// NewLogger creates a logger that drops messages below level.
func NewLogger(level LogLevel) *Logger {
	return &Logger{
		Logger: log.New(os.Stdout, "", 0),
		level:  level,
		fields: make(map[string]interface{}),
	}
}

func (l *Logger) write(level LogLevel, format string, v ...interface{}) {
	if level < l.level {
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] [%s] ", time.Now().Format("2006-01-02 15:04:05"), level)
	fmt.Fprintf(&b, format, v...)

	if len(l.fields) > 0 {
		b.WriteString(" [")
		first := true
		for key, val := range l.fields {
			if !first {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", key, val)
			first = false
		}
		b.WriteString("]")
	}

	l.Println(b.String())
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) { l.write(DEBUG, format, v...) }

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) { l.write(INFO, format, v...) }

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) { l.write(WARN, format, v...) }

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) { l.write(ERROR, format, v...) }

// WithFields returns a derived logger whose lines carry the given fields in
// addition to any already present.
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &Logger{Logger: l.Logger, level: l.level, fields: merged}
}

// WithField returns a derived logger with a single field added.
func (l *Logger) WithField(key string, value interface{}) *Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// Log is the package-wide logger.
var Log = NewLogger(INFO)
