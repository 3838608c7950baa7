package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"

	"github.com/Ishikawa-Yutaka/studying-tech-chat-app/internal/config"
)

func TestGormLoggerWritesThroughZap(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := newGormLogger(zap.New(core))
	ctx := context.Background()

	l.Warn(ctx, "slow query on %s", "messages")
	if logs.Len() != 1 {
		t.Fatalf("entries = %d, want 1", logs.Len())
	}
	entry := logs.All()[0]
	if entry.Level != zapcore.WarnLevel || entry.LoggerName != "gorm" {
		t.Errorf("entry = %+v", entry.Entry)
	}
	if !strings.Contains(entry.Message, "slow query on messages") {
		t.Errorf("message = %q", entry.Message)
	}

	l.Info(ctx, "connected")
	if logs.Len() != 1 {
		t.Errorf("info logged below Warn level: %d entries", logs.Len())
	}
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := newGormLogger(zap.New(core))
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	if logs.Len() != 0 {
		t.Fatalf("record-not-found logged: %v", logs.All())
	}

	l.Trace(ctx, time.Now(), sql, errors.New("boom"))
	if logs.Len() != 1 || !strings.Contains(logs.All()[0].Message, "boom") {
		t.Fatalf("error trace = %v", logs.All())
	}
}

func TestNewRejectsUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), config.DatabaseConfig{Driver: "oracle"}, zap.NewNop())
	if err == nil || !strings.Contains(err.Error(), "oracle") {
		t.Fatalf("err = %v, want unsupported driver", err)
	}
}
