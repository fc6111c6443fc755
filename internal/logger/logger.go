package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"tg-vaultgate/internal/config"
)

// log levels, lowest to highest
const (
	LevelDebug = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

var (
	std      = log.New(os.Stdout, "", log.Ldate|log.Ltime|log.Lshortfile)
	minLevel = LevelInfo
)

// createLogFilePath generates a log file path with the current date
func createLogFilePath(logDir, prefix string) string {
	currentDate := time.Now().Format("2006-01-02")
	return filepath.Join(logDir, fmt.Sprintf("%s-%s.log", prefix, currentDate))
}

// createRotatingLogger creates a lumberjack rotating logger
func createRotatingLogger(logFilePath string, cfg *config.Config) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    cfg.Logger.Rotation.MaxSize,
		MaxBackups: cfg.Logger.Rotation.MaxBackups,
		MaxAge:     cfg.Logger.Rotation.MaxAge,
		Compress:   cfg.Logger.Rotation.Compress,
	}
}

func parseLevel(level string) int {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Setup configures logging to output to both stdout and a rotating log file
func Setup(cfg *config.Config) error {
	logDir := cfg.Logger.Directory

	// Create log directory if it doesn't exist
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFilePath := createLogFilePath(logDir, "tg-vaultgate")
	rotatingLogger := createRotatingLogger(logFilePath, cfg)
	multiWriter := io.MultiWriter(os.Stdout, rotatingLogger)

	std = log.New(multiWriter, "", log.Ldate|log.Ltime|log.Lshortfile)
	minLevel = parseLevel(cfg.Logger.Level)

	std.Printf("[INFO] Logging initialized: writing to %s", logFilePath)
	return nil
}

func output(level int, tag, msg string) {
	if level < minLevel {
		return
	}
	// depth 3: output <- leveled helper <- caller
	std.Output(3, fmt.Sprintf("[%s] %s", tag, msg))
	if level == LevelFatal {
		os.Exit(1)
	}
}

func Debugf(format string, args ...interface{}) {
	output(LevelDebug, "DEBUG", fmt.Sprintf(format, args...))
}

func Info(args ...interface{}) {
	output(LevelInfo, "INFO", fmt.Sprint(args...))
}

func Infof(format string, args ...interface{}) {
	output(LevelInfo, "INFO", fmt.Sprintf(format, args...))
}

func Warning(args ...interface{}) {
	output(LevelWarning, "WARNING", fmt.Sprint(args...))
}

func Warningf(format string, args ...interface{}) {
	output(LevelWarning, "WARNING", fmt.Sprintf(format, args...))
}

func Error(args ...interface{}) {
	output(LevelError, "ERROR", fmt.Sprint(args...))
}

func Errorf(format string, args ...interface{}) {
	output(LevelError, "ERROR", fmt.Sprintf(format, args...))
}

func Fatalf(format string, args ...interface{}) {
	output(LevelFatal, "FATAL", fmt.Sprintf(format, args...))
}
