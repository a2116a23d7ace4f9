package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger writes diagnostic output for the library and CLI. Resolution
// paths only ever emit warnings and debug traces through it; nothing in
// this package can fail a caller.
type Logger struct {
	out     io.Writer
	debug   bool
	noColor bool
}

// New creates a logger writing to stderr.
func New(debug, noColor bool) *Logger {
	return &Logger{out: os.Stderr, debug: debug, noColor: noColor}
}

// NewWithWriter creates a logger with a custom output, used by tests to
// capture emissions.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	return &Logger{out: w, debug: debug, noColor: noColor}
}

func (l *Logger) emit(symbol, color, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.noColor {
		fmt.Fprintf(l.out, "%s %s\n", symbol, msg)
		return
	}
	fmt.Fprintf(l.out, "\033[%sm%s\033[0m %s\n", color, symbol, msg)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.emit("✓", "32", format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.emit("⚠", "33", format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.emit("✗", "31", format, args...)
}

// Debug logs a message only when debug mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.emit("[DEBUG]", "36", format, args...)
}

// Secret is a string whose formatted representation is always redacted.
// Resolved credential values should be wrapped in Secret before being
// passed to any log call.
type Secret string

// String implements fmt.Stringer, always returning a redacted value.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact replaces occurrences of the given secret values in s with
// [REDACTED]. Values of three characters or fewer are left alone to avoid
// shredding unrelated text.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		if len(secret) > 3 {
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
