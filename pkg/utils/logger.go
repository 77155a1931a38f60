package utils

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger writes application logs to a rotating file under the app dot-dir.
type Logger struct {
	logger  *log.Logger
	verbose bool
}

var (
	globalLogger *Logger
	once         sync.Once
)

// GetLogger returns the singleton Logger, creating it on first use.
// Logs rotate via lumberjack so a long-running chat session can't fill the disk.
func GetLogger() *Logger {
	once.Do(func() {
		logFile := &lumberjack.Logger{
			Filename:   filepath.Join(AppDir(), "ollama-chat.log"),
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
			Compress:   true,
		}
		globalLogger = &Logger{
			logger: log.New(logFile, "", log.LstdFlags),
		}
	})
	if os.Getenv("OLLAMA_CHAT_VERBOSE") == "1" {
		globalLogger.verbose = true
	}
	return globalLogger
}

// AppDir returns the per-user application directory, creating it if needed.
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	dir := filepath.Join(home, ".ollama-chat")
	_ = os.MkdirAll(dir, 0o755)
	return dir
}

// Close flushes and closes the underlying log file.
func (l *Logger) Close() error {
	if logFile, ok := l.logger.Writer().(*lumberjack.Logger); ok {
		return logFile.Close()
	}
	return nil
}

// Logf logs a formatted message to the log file.
func (l *Logger) Logf(format string, args ...any) {
	l.logger.Printf(format, args...)
	if l.verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// LogError logs an error if it is non-nil.
func (l *Logger) LogError(err error) {
	if err != nil {
		l.logger.Printf("ERROR: %v", err)
	}
}
