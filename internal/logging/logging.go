package logging

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Init configures the package-level logger used across the service.
func Init(level, prefix string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Level:           lvl,
		Prefix:          prefix,
	})
	log.SetDefault(logger)
	return logger
}
