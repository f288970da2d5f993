package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

var (
	file    *os.File
	logger  *slog.Logger
	mu      sync.Mutex
	enabled bool
)

// Enable starts debug logging to ~/.config/go-turing/debug.log
func Enable() error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	dir := filepath.Join(homeDir, ".config", "go-turing")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(filepath.Join(dir, "debug.log"), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	if err := EnableWriter(f, slog.LevelDebug); err != nil {
		f.Close()
		return err
	}

	mu.Lock()
	file = f
	mu.Unlock()
	return nil
}

// EnableWriter sends debug logging to w. Used by Enable and by tests.
func EnableWriter(w io.Writer, level slog.Level) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	logger = slog.New(h)
	enabled = true

	logger.Info("=== Debug logging started ===", "category", "debug")
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
	}
	logger = nil
	enabled = false
	counters = make(map[string]int)
}

// Enabled reports whether logging is on
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()

	if l == nil {
		return
	}
	l.Log(context.Background(), slog.LevelDebug, fmt.Sprintf(format, args...), "category", category)
}

// Warn logs at warning level; used for dropped events and I/O failures
func Warn(category, format string, args ...any) {
	mu.Lock()
	l := logger
	mu.Unlock()

	if l == nil {
		return
	}
	l.Warn(fmt.Sprintf(format, args...), "category", category)
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	if !enabled {
		mu.Unlock()
		return
	}
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
