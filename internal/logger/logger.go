// Package logger provides leveled diagnostics for the docchat pipeline.
// Warnings always reach the output; informational and per-step debug
// messages (chunk counts, retry delays, retrieval scores) are gated
// behind the --verbose flag so interactive sessions stay quiet.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Level controls how much diagnostic output is emitted.
type Level int

const (
	// LevelWarn emits warnings only. The default.
	LevelWarn Level = iota
	// LevelInfo adds progress messages for document and chat operations.
	LevelInfo
	// LevelDebug adds per-step pipeline detail.
	LevelDebug
)

var (
	mu     sync.RWMutex
	level  Level     = LevelWarn
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum level that is emitted.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetVerbose maps the --verbose flag onto levels: verbose means
// LevelDebug, quiet means LevelWarn.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelWarn)
	}
}

// IsVerbose reports whether debug output is enabled.
func IsVerbose() bool {
	return enabled(LevelDebug)
}

// SetOutput sets the output writer. Defaults to os.Stderr.
// Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func enabled(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return level >= l
}

func emit(tag, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	fmt.Fprintf(output, tag+format+"\n", args...)
}

// Debug prints per-step pipeline detail at LevelDebug.
func Debug(format string, args ...any) {
	if enabled(LevelDebug) {
		emit("[DEBUG] ", format, args...)
	}
}

// Info prints a progress message at LevelInfo or above.
func Info(format string, args ...any) {
	if enabled(LevelInfo) {
		emit("[INFO] ", format, args...)
	}
}

// Warn prints a warning regardless of the configured level.
func Warn(format string, args ...any) {
	emit("[WARN] ", format, args...)
}

// Section prints a stage header at LevelDebug.
func Section(name string) {
	if enabled(LevelDebug) {
		mu.RLock()
		defer mu.RUnlock()
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Timed opens a stage section and returns a function that logs the
// elapsed time when the stage completes. Intended for defer.
func Timed(name string) func() {
	if !enabled(LevelDebug) {
		return func() {}
	}
	Section(name)
	start := time.Now()
	return func() {
		Debug("%s done in %s", name, time.Since(start).Round(time.Millisecond))
	}
}
