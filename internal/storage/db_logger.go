package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartlime/spam-restrictor-bot/internal/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/utils"
)

// DBLogger sends gorm output through the bot's leveled logger.
type DBLogger struct {
	LogLevel                  gormlogger.LogLevel
	SlowThreshold             time.Duration
	IgnoreRecordNotFoundError bool
}

// NewDBLogger maps a configured level name onto gorm's log levels.
// SQL statements are only traced at DEBUG.
func NewDBLogger(level string) gormlogger.Interface {
	var logLevel gormlogger.LogLevel
	switch logger.ParseLevel(level) {
	case logger.LevelDebug:
		logLevel = gormlogger.Info
	case logger.LevelInfo, logger.LevelWarning:
		logLevel = gormlogger.Warn
	default:
		logLevel = gormlogger.Error
	}

	return &DBLogger{
		LogLevel:                  logLevel,
		SlowThreshold:             200 * time.Millisecond,
		IgnoreRecordNotFoundError: true,
	}
}

func (l *DBLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	newLogger := *l
	newLogger.LogLevel = level
	return &newLogger
}

func (l *DBLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Info {
		logger.Infof(msg, data...)
	}
}

func (l *DBLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Warn {
		logger.Warningf(msg, data...)
	}
}

func (l *DBLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= gormlogger.Error {
		logger.Errorf(msg, data...)
	}
}

// Trace logs failed and slow statements, and every statement at Info.
func (l *DBLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.LogLevel <= gormlogger.Silent {
		return
	}

	elapsed := float64(time.Since(begin).Nanoseconds()) / 1e6
	sql, rows := fc()
	source := utils.FileWithLineNum()

	switch {
	case err != nil && l.LogLevel >= gormlogger.Error && (!errors.Is(err, gorm.ErrRecordNotFound) || !l.IgnoreRecordNotFoundError):
		logger.Errorf("[%.3fms] [%s] %s; error=%v", elapsed, source, sql, err)
	case l.SlowThreshold != 0 && time.Since(begin) > l.SlowThreshold && l.LogLevel >= gormlogger.Warn:
		logger.Warningf("[%.3fms] [%s] %s; %s, rows=%v", elapsed, source, sql, fmt.Sprintf("SLOW SQL >= %v", l.SlowThreshold), rows)
	case l.LogLevel == gormlogger.Info:
		logger.Debugf("[%.3fms] [%s] %s; rows=%v", elapsed, source, sql, rows)
	}
}
