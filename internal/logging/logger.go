// Package logging writes hntop's log to a dated file under the data directory.
// The terminal belongs to the TUI, so nothing is logged to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

var (
	// Logger is the global logger instance
	Logger = log.New(io.Discard)

	// logFile is the file handle for the log file
	logFile *os.File
)

// Init opens dataDir/logs/hntop-YYYY-MM-DD.log and points Logger at it.
// Every line carries a per-run session id.
func Init(dataDir string, level log.Level) error {
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFileName := fmt.Sprintf("hntop-%s.log", time.Now().Format("2006-01-02"))
	logPath := filepath.Join(logDir, logFileName)

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	logFile = f

	Logger = New(f, level).With("session", uuid.NewString())
	Logger.Info("hntop started")
	return nil
}

// New builds a logger in the application's format writing to w.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           level,
	})
}

// Close closes the log file
func Close() {
	if logFile != nil {
		Logger.Info("hntop shutting down")
		logFile.Close()
		logFile = nil
	}
	Logger = log.New(io.Discard)
}

// ParseLevel maps a config string to a log level, defaulting to info.
func ParseLevel(s string) log.Level {
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}
