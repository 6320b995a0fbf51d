package internal

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
)

var (
	serviceLogger     *log.Logger
	serviceLoggerOnce sync.Once
	serviceLogMu      sync.RWMutex
)

// Component tags for the service log
const (
	logMCP        = "MCP"
	logAPI        = "API"
	logAggregator = "AGG"
)

// initServiceLogger opens the log file in logDir; failures leave logging disabled
func initServiceLogger(logDir string) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return
	}

	logPath := filepath.Join(logDir, appName+".log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}

	SetServiceLogOutput(logFile)
}

// InitServiceLogging enables the file log when the config asks for it
func InitServiceLogging(config *Config) {
	if !config.LogEnabled {
		return
	}
	serviceLoggerOnce.Do(func() {
		initServiceLogger(config.CacheDir)
	})
}

// SetServiceLogOutput sends service log lines to w; nil disables logging
func SetServiceLogOutput(w io.Writer) {
	serviceLogMu.Lock()
	defer serviceLogMu.Unlock()

	if w == nil {
		serviceLogger = nil
		return
	}
	serviceLogger = log.New(w, "", log.LstdFlags|log.Lmicroseconds)
}

// ServiceLogPath returns where the service log is written
func ServiceLogPath(config *Config) string {
	return filepath.Join(config.CacheDir, appName+".log")
}

// logf writes a "[component] [LEVEL]" line if service logging is enabled
func logf(component, level, format string, args ...any) {
	serviceLogMu.RLock()
	logger := serviceLogger
	serviceLogMu.RUnlock()

	if logger == nil {
		return
	}

	logger.Printf("[%s] [%s] "+format, append([]any{component, level}, args...)...)
}

func logInfo(component, format string, args ...any) {
	logf(component, "INFO", format, args...)
}

func logError(component, format string, args ...any) {
	logf(component, "ERROR", format, args...)
}

func logDebug(component, format string, args ...any) {
	logf(component, "DEBUG", format, args...)
}
