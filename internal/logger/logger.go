// Package logger writes leveled diagnostics to stderr. Debug and Info lines
// are only printed in verbose mode; warnings and errors always are.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	now               = time.Now
)

// SetVerbose enables or disables Debug and Info output.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func Debug(format string, args ...any) { write(true, "DEBUG", format, args...) }

func Info(format string, args ...any) { write(true, "INFO", format, args...) }

func Warn(format string, args ...any) { write(false, "WARN", format, args...) }

func Error(format string, args ...any) { write(false, "ERROR", format, args...) }

func write(verboseOnly bool, level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verboseOnly && !verbose {
		return
	}
	fmt.Fprintf(output, "%s [%s] %s\n", now().Format(time.TimeOnly), level, fmt.Sprintf(format, args...))
}
