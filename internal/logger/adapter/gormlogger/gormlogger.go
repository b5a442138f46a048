// Package gormlogger routes gorm statements and messages to zerolog.
package gormlogger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Logger implements gorm's logger.Interface on top of a zerolog.Logger.
type Logger struct {
	zl            zerolog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// New returns a Logger writing to the global zerolog logger.
// Statements slower than slowThreshold are logged as warnings, zero disables the check.
func New(slowThreshold time.Duration) *Logger {
	return &Logger{
		zl:            log.Logger.With().Str("component", "gorm").Logger(),
		level:         gormlogger.Warn,
		slowThreshold: slowThreshold,
	}
}

// WithLogger swaps the target logger, mainly for tests.
func (l *Logger) WithLogger(zl zerolog.Logger) *Logger {
	n := *l
	n.zl = zl

	return &n
}

// LogMode implements logger.Interface.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	n := *l
	n.level = level

	return &n
}

// Info implements logger.Interface.
func (l *Logger) Info(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.zl.Info().Msg(fmt.Sprintf(msg, args...))
	}
}

// Warn implements logger.Interface.
func (l *Logger) Warn(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.zl.Warn().Msg(fmt.Sprintf(msg, args...))
	}
}

// Error implements logger.Interface.
func (l *Logger) Error(_ context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.zl.Error().Msg(fmt.Sprintf(msg, args...))
	}
}

// Trace implements logger.Interface.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	switch {
	case err != nil && l.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.zl.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("gorm statement failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		sql, rows := fc()
		l.zl.Warn().Dur("elapsed", elapsed).Dur("threshold", l.slowThreshold).Int64("rows", rows).Str("sql", sql).
			Msg("slow gorm statement")
	case l.level >= gormlogger.Info:
		sql, rows := fc()
		l.zl.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("gorm statement")
	}
}
