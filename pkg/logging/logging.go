package logging

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// New builds the process-wide logger. Caller reporting is only enabled at
// debug level because it is noisy in production output.
func New(level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}

	return log.NewWithOptions(os.Stdout, log.Options{
		ReportCaller:    lvl == log.DebugLevel,
		ReportTimestamp: true,
		Level:           lvl,
		TimeFormat:      time.Kitchen,
	})
}

// ForComponent returns a child logger tagged with the component name.
func ForComponent(logger *log.Logger, name string) *log.Logger {
	return logger.With("component", name)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
