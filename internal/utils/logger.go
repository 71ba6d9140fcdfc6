package utils

import (
	"io"
	"os"
	"path/filepath"

	"governd/internal/types"

	"github.com/sirupsen/logrus"
)

// SetupLogger configures the global logrus instance from LogConfig.
func SetupLogger(configManager types.ConfigManager) {
	logConfig := configManager.GetLogConfig()

	level, err := logrus.ParseLevel(logConfig.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if logConfig.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05",
		})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	if logConfig.EnableFile && logConfig.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(logConfig.FilePath), 0o755); err != nil {
			logrus.Warnf("failed to create log directory: %v", err)
			return
		}
		file, err := os.OpenFile(logConfig.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logrus.Warnf("failed to open log file: %v", err)
			return
		}
		logrus.SetOutput(io.MultiWriter(os.Stdout, file))
	}
}
