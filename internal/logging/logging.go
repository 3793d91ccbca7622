// Package logging sets up the file logger. The terminal belongs to the
// renderer, so nothing is logged to stdout.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
)

// New creates a logger writing to a timestamped file in logDir. The
// returned closer closes that file.
func New(logDir, logLevel string) (*logrus.Logger, io.Closer, error) {
	logger := logrus.New()

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level '%s': %w", logLevel, err)
	}
	logger.SetLevel(level)

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory '%s': %w", logDir, err)
	}

	timestamp := time.Now().Format("2006-01-02T15-04-05")
	logFile := filepath.Join(logDir, fmt.Sprintf("cadence-%s.log", timestamp))

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file '%s': %w", logFile, err)
	}

	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	logger.SetOutput(file)

	logger.WithField("log_file", logFile).Info("Logger initialized")
	return logger, file, nil
}
