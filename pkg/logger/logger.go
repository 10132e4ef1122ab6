package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/killallgit/menudata/pkg/config"
)

// LogLevel represents the logging level
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Logger provides a unified logging interface
type Logger struct {
	level     LogLevel
	logger    *log.Logger
	file      *os.File
	component string
	// stderr receives ERROR and FATAL lines in addition to the log file
	stderr io.Writer
}

var (
	defaultLogger *Logger
	historyMu     sync.Mutex
	historyFile   *os.File
)

// Init initializes the logger with configuration from global config
func Init() error {
	if defaultLogger != nil {
		return nil
	}

	settings := config.Get()
	level := ParseLevel(settings.Logging.Level)

	l, err := New(level, config.ResolvePath(settings.Logging.LogFile), settings.Logging.Preserve)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defaultLogger = l
	return nil
}

// New creates a new Logger instance writing to logPath
func New(level LogLevel, logPath string, preserve bool) (*Logger, error) {
	file, err := openLogFile(logPath, preserve)
	if err != nil {
		return nil, err
	}

	return &Logger{
		level:  level,
		logger: log.New(file, "", log.LstdFlags),
		file:   file,
		stderr: os.Stderr,
	}, nil
}

// NewWithWriter creates a Logger that writes to w and never touches stderr
func NewWithWriter(level LogLevel, w io.Writer) *Logger {
	return &Logger{
		level:  level,
		logger: log.New(w, "", log.LstdFlags),
	}
}

func openLogFile(logPath string, preserve bool) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if preserve {
		flags = os.O_CREATE | os.O_WRONLY | os.O_APPEND
	}

	file, err := os.OpenFile(logPath, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return file, nil
}

// Close closes the log file
func (l *Logger) Close() error {
	if l.file != nil && l.component == "" {
		return l.file.Close()
	}
	return nil
}

// WithComponent returns a logger that prefixes every line with the component name.
// The returned logger shares the parent's output and must not be closed.
func (l *Logger) WithComponent(name string) *Logger {
	return &Logger{
		level:     l.level,
		logger:    l.logger,
		file:      l.file,
		component: name,
		stderr:    l.stderr,
	}
}

// ParseLevel converts a string level to LogLevel
func ParseLevel(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(levelStr)) {
	case "debug":
		return LevelDebug
	case "info":
		return LevelInfo
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return l != nil && level >= l.level
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	message := fmt.Sprintf(format, args...)
	if l.component != "" {
		message = fmt.Sprintf("[%s] %s", l.component, message)
	}
	l.logger.Printf("[%s] %s", level.String(), message)

	if level >= LevelError && l.stderr != nil {
		fmt.Fprintf(l.stderr, "[%s] %s\n", level.String(), message)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Info logs an info message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Fatal logs a fatal message and exits
func (l *Logger) Fatal(format string, args ...interface{}) {
	l.log(LevelFatal, format, args...)
	os.Exit(1)
}

// Package-level convenience functions using the default logger

// WithComponent returns a component logger bound to the default logger.
// Before Init it returns a logger that discards everything.
func WithComponent(name string) *Logger {
	if defaultLogger == nil {
		return NewWithWriter(LevelFatal+1, io.Discard).WithComponent(name)
	}
	return defaultLogger.WithComponent(name)
}

// Debug logs a debug message using the default logger
func Debug(format string, args ...interface{}) {
	defaultLogger.Debug(format, args...)
}

// Info logs an info message using the default logger
func Info(format string, args ...interface{}) {
	defaultLogger.Info(format, args...)
}

// Warn logs a warning message using the default logger
func Warn(format string, args ...interface{}) {
	defaultLogger.Warn(format, args...)
}

// Error logs an error message using the default logger
func Error(format string, args ...interface{}) {
	defaultLogger.Error(format, args...)
}

// Fatal logs a fatal message and exits using the default logger
func Fatal(format string, args ...interface{}) {
	if defaultLogger == nil {
		fmt.Fprintf(os.Stderr, "[FATAL] "+format+"\n", args...)
		os.Exit(1)
	}
	defaultLogger.Fatal(format, args...)
}

// SetOutput sets the output writer for the logger (useful for testing)
func SetOutput(w io.Writer) {
	if defaultLogger != nil && defaultLogger.logger != nil {
		defaultLogger.logger.SetOutput(w)
	}
}

// SetDefault replaces the default logger (useful for testing)
func SetDefault(l *Logger) {
	defaultLogger = l
}

// InitHistoryFile opens the chat transcript file. With resume set the
// previous transcript is kept and a continuation marker is appended.
func InitHistoryFile(path string, resume bool) error {
	if path == "" {
		path = filepath.Join(".menudata", "chat.history")
	}

	file, err := openLogFile(path, resume)
	if err != nil {
		return err
	}

	marker := "Menudata Chat Session Started"
	if resume {
		marker = "Menudata Chat Session Continued"
	}

	historyMu.Lock()
	defer historyMu.Unlock()
	if historyFile != nil {
		historyFile.Close()
	}
	historyFile = file
	_, err = fmt.Fprintf(historyFile, "=== %s at %s ===\n", marker, time.Now().Format(time.RFC3339))
	return err
}

// LogChatHistory appends one transcript line. It is a no-op until InitHistoryFile succeeds.
func LogChatHistory(role, content string) error {
	historyMu.Lock()
	defer historyMu.Unlock()
	if historyFile == nil {
		return nil
	}
	_, err := fmt.Fprintf(historyFile, "[%s] %s: %s\n", time.Now().Format("15:04:05"), role, content)
	return err
}

// Close closes the default logger and the transcript file
func Close() error {
	historyMu.Lock()
	if historyFile != nil {
		historyFile.Close()
		historyFile = nil
	}
	historyMu.Unlock()

	if defaultLogger != nil {
		err := defaultLogger.Close()
		defaultLogger = nil
		return err
	}
	return nil
}
