package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

// Environment variable to configure log file path.
const envLogPath = "KVTTL_LOG"

const flags = log.Ldate | log.Ltime | log.Lmicroseconds

var (
	std           = log.New(os.Stderr, "", flags)
	logFile       *os.File
	isInitialized bool
)

// InitFromEnv initializes the logger using KVTTL_LOG or a default path next
// to the executable.
func InitFromEnv() error {
	path := os.Getenv(envLogPath)
	if path == "" {
		if exePath, err := os.Executable(); err == nil {
			path = filepath.Join(filepath.Dir(exePath), "kvttl.log")
		} else {
			path = "./kvttl.log"
		}
	}
	return Init(path)
}

// Init initializes the logger to write to the provided file path.
// It creates parent directories if needed and opens the file in append mode.
// Until Init succeeds, log lines go to stderr.
func Init(path string) error {
	if isInitialized {
		return nil
	}
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	std = log.New(f, "", flags)
	isInitialized = true
	return nil
}

// SetOutput redirects log lines to w without touching any open log file.
func SetOutput(w io.Writer) { std.SetOutput(w) }

// Close closes the underlying log file, if open, and falls back to stderr.
func Close() error {
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		std = log.New(os.Stderr, "", flags)
		isInitialized = false
		return err
	}
	return nil
}

// Printf logs a formatted message at info level.
func Printf(format string, args ...any) { write("INFO", format, args...) }

// Infof logs informational messages.
func Infof(format string, args ...any) { write("INFO", format, args...) }

// Warnf logs warnings.
func Warnf(format string, args ...any) { write("WARN", format, args...) }

// Errorf logs errors.
func Errorf(format string, args ...any) { write("ERROR", format, args...) }

func write(level string, format string, args ...any) {
	std.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
