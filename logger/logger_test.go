package logger_test

import (
	"errors"
	"testing"

	"github.com/evdnx/turtle/logger"
	"github.com/evdnx/turtle/testutils"
)

func TestMockLogger(t *testing.T) {
	l := testutils.NewMockLogger()
	l.Info("hello", logger.String("k", "v"))
	if got := l.LastMessage(); got != "hello" {
		t.Fatalf("expected last message 'hello', got %q", got)
	}
}

func TestNopLoggerAcceptsFields(t *testing.T) {
	l := logger.NewNop()
	l.Warn("skipped", logger.Float64("cost", 10), logger.Err(errors.New("boom")))
	l.Error("integrity", logger.Int("units", 2), logger.Bool("long", true))
}
