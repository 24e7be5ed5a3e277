package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormLogger sends GORM's output through slog so SQL errors carry the
// request ID and trace ID like every other log line.
type GormLogger struct {
	log           *slog.Logger
	level         logger.LogLevel
	SlowThreshold time.Duration
}

var _ logger.Interface = (*GormLogger)(nil)

// NewGormLogger logs failed statements and statements slower than 200ms.
func NewGormLogger(l *slog.Logger) *GormLogger {
	return &GormLogger{log: l, level: logger.Warn, SlowThreshold: 200 * time.Millisecond}
}

func (g *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *g
	clone.level = level
	return &clone
}

func (g *GormLogger) Info(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, logger.Info, msg, args)
}

func (g *GormLogger) Warn(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, logger.Warn, msg, args)
}

func (g *GormLogger) Error(ctx context.Context, msg string, args ...any) {
	g.printf(ctx, logger.Error, msg, args)
}

func (g *GormLogger) printf(ctx context.Context, at logger.LogLevel, msg string, args []any) {
	if g.level >= at {
		g.log.Log(ctx, slogLevel(at), fmt.Sprintf(msg, args...))
	}
}

// Trace is called after every statement. Not-found lookups are normal control
// flow for the repositories and are never reported as errors.
func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= logger.Silent {
		return
	}
	elapsed := time.Since(begin)

	var (
		at  logger.LogLevel
		msg string
	)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		at, msg = logger.Error, "sql error"
	case g.SlowThreshold > 0 && elapsed > g.SlowThreshold:
		at, msg = logger.Warn, "slow sql"
	default:
		at, msg = logger.Info, "sql"
	}
	if g.level < at {
		return
	}

	statement, rows := fc()
	attrs := []slog.Attr{
		slog.String("sql", statement),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}
	if at == logger.Error {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	g.log.LogAttrs(ctx, slogLevel(at), msg, attrs...)
}

func slogLevel(l logger.LogLevel) slog.Level {
	switch l {
	case logger.Error:
		return slog.LevelError
	case logger.Warn:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
