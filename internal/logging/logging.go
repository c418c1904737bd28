// Package logging configures the application log file.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// FileLogger wraps a logger writing to an append-only log file.
type FileLogger struct {
	*log.Logger
	file *os.File
}

// Open creates or appends to the log file at path with the given level.
// Level must be one of debug, info, warn, error.
func Open(path, level string) (*FileLogger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parse log level %q: %w", level, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		Level:           lvl,
		Formatter:       log.TextFormatter,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "taskmaster",
	})

	return &FileLogger{Logger: logger, file: f}, nil
}

// Nop returns a logger that discards everything, for tests and for
// commands that run before logging is configured.
func Nop() *FileLogger {
	return &FileLogger{Logger: log.New(io.Discard)}
}

// Close closes the underlying log file.
func (l *FileLogger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}
