package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	l.SlowThreshold = 10 * time.Millisecond
	ctx := context.Background()
	calls := 0
	fc := func() (string, int64) { calls++; return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), fc, nil)
	assert.Empty(t, buf.String(), "fast statements stay below warn")
	assert.Zero(t, calls, "SQL is only rendered when it will be logged")

	l.Trace(ctx, time.Now(), fc, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), fc, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), `error="syntax error"`)

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), fc, nil)
	assert.Contains(t, buf.String(), "slow sql")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), fc, errors.New("ignored"))
	assert.Empty(t, buf.String())

	l.LogMode(logger.Info).Trace(ctx, time.Now(), fc, nil)
	assert.Contains(t, buf.String(), `sql="SELECT 1"`)
}

func TestGormLogger_Printf(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx := context.Background()

	l.Info(ctx, "hidden %d", 1)
	assert.Empty(t, buf.String())

	l.Warn(ctx, "replacing callback %s", "create")
	assert.Contains(t, buf.String(), "replacing callback create")
}
