package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu       sync.Mutex
	file     *os.File
	counters map[string]int
)

func logPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "stepclock", "debug.log"), nil
}

// Enable starts debug logging to ~/.config/stepclock/debug.log. Calling it
// again while enabled is a no-op.
func Enable() error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		return nil
	}

	path, err := logPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	file = f
	counters = make(map[string]int)

	write("debug", "=== Debug logging started ===")
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
}

// write appends one line. Callers hold mu.
func write(category, format string, args ...any) {
	if file == nil {
		return
	}
	ts := time.Now().Format("15:04:05.000")
	fmt.Fprintf(file, "[%s] %-10s %s\n", ts, category, fmt.Sprintf(format, args...))
	file.Sync() // flush immediately so we see logs even on crash
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	write(category, format, args...)
}

// LogEvery logs only every N calls (use for high-frequency events like ticks)
func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if file == nil {
		return
	}
	key := category + format
	counters[key]++
	if counters[key]%n == 0 {
		write(category, format+" (count=%d)", append(args, counters[key])...)
	}
}
