package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/smartlime/spam-restrictor-bot/internal/config"
)

// Level is a log severity, ordered from most to least verbose.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarning
	LevelError
	LevelFatal
)

var levelNames = map[Level]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
	LevelFatal:   "FATAL",
}

func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel maps a configured level name onto a Level, defaulting to INFO.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarning
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelInfo
	}
}

var (
	mu         sync.RWMutex
	minLevel   = LevelInfo
	location   = time.Local
	timeFormat = "2006/01/02 15:04:05"
	output     = io.Writer(os.Stdout)
)

// logFilePath names the file after the start date: <dir>/<prefix>-2006-01-02.log
func logFilePath(logDir, prefix string, now time.Time) string {
	return filepath.Join(logDir, fmt.Sprintf("%s-%s.log", prefix, now.Format("2006-01-02")))
}

func rotatingFile(path string, rotation config.LogRotationConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    rotation.MaxSize,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAge,
		Compress:   rotation.Compress,
	}
}

// Setup configures logging to output to both stdout and a rotating log file
func Setup(cfg *config.Config) error {
	logDir := cfg.Logger.Directory

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	loc := time.Local
	if cfg.Logger.Timezone != "" && cfg.Logger.Timezone != "Local" {
		l, err := time.LoadLocation(cfg.Logger.Timezone)
		if err != nil {
			return fmt.Errorf("invalid log timezone %q: %w", cfg.Logger.Timezone, err)
		}
		loc = l
	}

	path := logFilePath(logDir, "spam-restrictor", time.Now().In(loc))
	w := io.MultiWriter(os.Stdout, rotatingFile(path, cfg.Logger.Rotation))

	// libraries on the standard logger end up in the same place
	log.SetOutput(w)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	level := ParseLevel(cfg.Logger.Level)
	configure(w, level, loc, cfg.Logger.TimeFormat)

	Infof("Logging initialized: writing to %s (level %s)", path, level)
	return nil
}

// SetOutput redirects leveled output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetLevel changes the minimum level that gets written.
func SetLevel(level Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = level
}

// GetLevel returns the current minimum level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return minLevel
}

func configure(w io.Writer, level Level, loc *time.Location, format string) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	minLevel = level
	location = loc
	if format != "" {
		timeFormat = format
	}
}

// write emits "[LEVEL] time file:line: message"; depth is the number of frames above write.
func write(level Level, depth int, msg string) {
	mu.RLock()
	defer mu.RUnlock()
	if level < minLevel {
		return
	}

	_, file, line, ok := runtime.Caller(depth + 1)
	if !ok {
		file = "???"
		line = 0
	}

	fmt.Fprintf(output, "[%s] %s %s:%d: %s\n",
		level, time.Now().In(location).Format(timeFormat), filepath.Base(file), line, strings.TrimRight(msg, "\n"))
}

func Debug(args ...interface{}) { write(LevelDebug, 1, fmt.Sprint(args...)) }

func Debugf(format string, args ...interface{}) { write(LevelDebug, 1, fmt.Sprintf(format, args...)) }

func Info(args ...interface{}) { write(LevelInfo, 1, fmt.Sprint(args...)) }

func Infof(format string, args ...interface{}) { write(LevelInfo, 1, fmt.Sprintf(format, args...)) }

func Warning(args ...interface{}) { write(LevelWarning, 1, fmt.Sprint(args...)) }

func Warningf(format string, args ...interface{}) {
	write(LevelWarning, 1, fmt.Sprintf(format, args...))
}

func Error(args ...interface{}) { write(LevelError, 1, fmt.Sprint(args...)) }

func Errorf(format string, args ...interface{}) { write(LevelError, 1, fmt.Sprintf(format, args...)) }

// Fatal logs and exits the process.
func Fatal(args ...interface{}) {
	write(LevelFatal, 1, fmt.Sprint(args...))
	os.Exit(1)
}

// Fatalf logs and exits the process.
func Fatalf(format string, args ...interface{}) {
	write(LevelFatal, 1, fmt.Sprintf(format, args...))
	os.Exit(1)
}
