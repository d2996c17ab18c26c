package logging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/ziflex/lecho/v3"
)

// Logger logs to STDOUT, or to a dated file next to logFilePath when one is
// configured.
func Logger(logFilePath, level string) *lecho.Logger {
	logger := lecho.New(
		os.Stdout,
		lecho.WithLevel(ParseLevel(level)),
		lecho.WithTimestamp(),
	)
	if logFilePath != "" {
		file, err := GetLoggingFile(logFilePath, time.Now())
		if err != nil {
			logger.Errorf("failed to create logging file: %v", err)
			return logger
		}
		logger.SetOutput(file)
	}
	return logger
}

// ParseLevel maps a LOG_LEVEL value to a log level, defaulting to DEBUG.
func ParseLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "info":
		return log.INFO
	case "warn", "warning":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.DEBUG
}

// LogFileName stamps path with the day, before its extension if it has one.
func LogFileName(path string, now time.Time) string {
	stamp := now.Format("2006-01-02")
	extension := filepath.Ext(path)
	if extension == "" {
		return path + "-" + stamp + ".log"
	}
	return strings.TrimSuffix(path, extension) + "-" + stamp + extension
}

func GetLoggingFile(path string, now time.Time) (*os.File, error) {
	return os.OpenFile(LogFileName(path, now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
}
