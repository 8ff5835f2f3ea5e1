// Package logging provides categorized file-based logging for the TUI,
// where stdout belongs to the renderer. Logs land under the state directory
// with one file per category. When debug_mode is off nothing is written.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category names a log file.
type Category string

const (
	CategoryBoot    Category = "boot"    // startup, config resolution
	CategorySession Category = "session" // sign-in state, session store
	CategoryAPI     Category = "api"     // backend calls
	CategoryFlow    Category = "flow"    // conversation state transitions
	CategoryStore   Category = "store"   // cache hits and invalidations
)

// Settings controls what gets written. Mirrors config.LoggingConfig to
// avoid a circular import.
type Settings struct {
	DebugMode  bool
	Categories []string // empty means all
}

// Logger writes to one category file. The zero value is a no-op.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers    = make(map[Category]*Logger)
	loggersMu  sync.Mutex
	logsDir    string
	settings   Settings
	settingsMu sync.RWMutex
)

// Initialize points the logging system at the state directory. Called once
// at startup; the logs directory is only created when debug mode is on.
func Initialize(stateDir string, s Settings) error {
	if stateDir == "" {
		return fmt.Errorf("state dir required")
	}
	logsDir = filepath.Join(stateDir, "logs")

	settingsMu.Lock()
	settings = s
	settingsMu.Unlock()

	if !s.DebugMode {
		return nil
	}
	if err := os.MkdirAll(logsDir, 0o755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	Get(CategoryBoot).Info("logging initialized, dir=%s", logsDir)
	return nil
}

// Reconfigure applies new settings at runtime (config live reload).
func Reconfigure(s Settings) {
	settingsMu.Lock()
	settings = s
	settingsMu.Unlock()
}

func enabled(category Category) bool {
	settingsMu.RLock()
	defer settingsMu.RUnlock()
	if !settings.DebugMode {
		return false
	}
	if len(settings.Categories) == 0 {
		return true
	}
	for _, c := range settings.Categories {
		if c == string(category) {
			return true
		}
	}
	return false
}

// Get returns the logger for a category, a no-op when the category is off.
func Get(category Category) *Logger {
	if !enabled(category) || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	date := time.Now().Format("2006-01-02")
	path := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open %s: %v\n", path, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[DEBUG] "+format, args...)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[INFO] "+format, args...)
}

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[WARN] "+format, args...)
}

// Error logs an error.
func (l *Logger) Error(format string, args ...any) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] "+format, args...)
}

// CloseAll flushes and closes every open log file. Called on shutdown.
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for cat, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
		delete(loggers, cat)
	}
}
