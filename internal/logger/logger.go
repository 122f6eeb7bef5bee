// Package logger provides leveled diagnostic logging for deadmethods.
package logger

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// Logger interface provides logging capabilities.
type Logger interface {
	// Debugf logs a message shown only in verbose mode.
	Debugf(format string, args ...any)
	// Infof logs an informational message.
	Infof(format string, args ...any)
	// Warnf logs a warning.
	Warnf(format string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

// NewNoopLogger creates a new noop logger.
func NewNoopLogger() Logger {
	return noopLogger{}
}

func (noopLogger) Debugf(string, ...any) {}
func (noopLogger) Infof(string, ...any)  {}
func (noopLogger) Warnf(string, ...any)  {}

// consoleLogger is a thread-safe logger that writes colored lines to w.
type consoleLogger struct {
	mu      sync.Mutex
	w       io.Writer
	verbose bool

	debug *color.Color
	info  *color.Color
	warn  *color.Color
}

// New creates a logger writing to w. Debug messages are dropped unless verbose.
func New(w io.Writer, verbose bool) Logger {
	return &consoleLogger{
		w:       w,
		verbose: verbose,
		debug:   color.New(color.FgHiBlack),
		info:    color.New(color.FgCyan),
		warn:    color.New(color.FgYellow),
	}
}

func (l *consoleLogger) Debugf(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.write(l.debug, "debug", format, args)
}

func (l *consoleLogger) Infof(format string, args ...any) {
	l.write(l.info, "info", format, args)
}

func (l *consoleLogger) Warnf(format string, args ...any) {
	l.write(l.warn, "warn", format, args)
}

func (l *consoleLogger) write(c *color.Color, level, format string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = c.Fprintf(l.w, "%-5s ", level)
	_, _ = fmt.Fprintf(l.w, format+"\n", args...)
}
