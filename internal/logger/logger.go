// Package logger provides the leveled, file+console logger used throughout
// the decoder CLI: DEBUG and INFO go to the log file only, WARN and ERROR
// go to both, the same split the reference pipeline this CLI was adapted
// from uses for its own diagnostics.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Level lists supported log severities.
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

var levelNames = map[Level]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
}

// Logger writes to file plus console.
type Logger struct {
	mu          sync.Mutex
	fileLogger  *log.Logger // file output
	consoleLog  *log.Logger // warnings and above
	level       Level
	logFile     *os.File
	logFilePath string
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// Init creates the global logger. logFilePrefix names the log file inside
// logDir, e.g. "rdbsnap" produces <logDir>/rdbsnap.log.
func Init(logDir string, level Level, logFilePrefix string) error {
	var initErr error
	once.Do(func() {
		// Ensure log directory exists
		if err := os.MkdirAll(logDir, 0755); err != nil {
			initErr = fmt.Errorf("create log directory: %w", err)
			return
		}

		if logFilePrefix == "" {
			logFilePrefix = "rdbsnap"
		}
		logFileName := fmt.Sprintf("%s.log", logFilePrefix)
		logFilePath := filepath.Join(logDir, logFileName)

		logFile, err := os.OpenFile(logFilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			initErr = fmt.Errorf("open log file: %w", err)
			return
		}

		fileLogger := log.New(logFile, "", 0)
		consoleLog := log.New(os.Stderr, "", 0)

		defaultLogger = &Logger{
			fileLogger:  fileLogger,
			consoleLog:  consoleLog,
			level:       level,
			logFile:     logFile,
			logFilePath: logFilePath,
		}
	})
	return initErr
}

// Close shuts down the log file.
func Close() error {
	if defaultLogger != nil && defaultLogger.logFile != nil {
		return defaultLogger.logFile.Close()
	}
	return nil
}

// GetLogFilePath returns the backing log file path.
func GetLogFilePath() string {
	if defaultLogger != nil {
		return defaultLogger.logFilePath
	}
	return ""
}

// formatMessage standardizes log records.
func formatMessage(level Level, format string, args ...interface{}) string {
	timestamp := time.Now().Format("2006/01/02 15:04:05")
	levelStr := levelNames[level]
	message := fmt.Sprintf(format, args...)
	return fmt.Sprintf("%s [%s] %s", timestamp, levelStr, message)
}

// logToFile writes to the log file.
func logToFile(level Level, format string, args ...interface{}) {
	if defaultLogger == nil {
		return
	}
	if level < defaultLogger.level {
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	message := formatMessage(level, format, args...)
	defaultLogger.fileLogger.Println(message)
}

// logToConsole prints to stderr.
func logToConsole(level Level, format string, args ...interface{}) {
	if defaultLogger == nil {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
		return
	}
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.consoleLog.Println(formatMessage(level, format, args...))
}

// logToBoth mirrors the entry to both sinks.
func logToBoth(level Level, format string, args ...interface{}) {
	logToFile(level, format, args...)
	logToConsole(level, format, args...)
}

// Debug logs debug messages (file only).
func Debug(format string, args ...interface{}) {
	logToFile(DEBUG, format, args...)
}

// Info logs info messages (file only).
func Info(format string, args ...interface{}) {
	logToFile(INFO, format, args...)
}

// Warn logs warnings (file + console).
func Warn(format string, args ...interface{}) {
	logToBoth(WARN, format, args...)
}

// Error logs errors (file + console).
func Error(format string, args ...interface{}) {
	logToBoth(ERROR, format, args...)
}

// Writer returns an io.Writer compatible with the standard log package.
func Writer() io.Writer {
	if defaultLogger != nil {
		return defaultLogger.logFile
	}
	return os.Stderr
}
