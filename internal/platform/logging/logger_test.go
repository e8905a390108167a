package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestLoggerWritesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{
		Level:       LevelInfo,
		Service:     "matchsim",
		Version:     "1.2.3",
		Environment: "dev",
		Output:      &buf,
	})

	logger.With("match_id", "m_1").Info("match completed", "home_score", 2, "error", errors.New("late"))
	logger.Debug("hidden")
	_ = logger.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("unexpected log lines: got=%d want=1", len(lines))
	}

	var entry map[string]any
	if err := sonic.UnmarshalString(lines[0], &entry); err != nil {
		t.Fatalf("decode entry: %v", err)
	}
	checks := map[string]any{
		"msg":        "match completed",
		"service":    "matchsim",
		"version":    "1.2.3",
		"env":        "dev",
		"match_id":   "m_1",
		"home_score": float64(2),
		"error":      "late",
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Fatalf("unexpected %s: got=%v want=%v", key, entry[key], want)
		}
	}
}

func TestLoggerContextWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := New(Options{Level: LevelDebug, Output: &buf})

	logger.WarnContext(context.Background(), "runner tick slow")
	if strings.Contains(buf.String(), "trace_id") {
		t.Fatalf("expected no trace fields without span: %s", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for raw, want := range tests {
		if got := ParseLevel(raw); got != want {
			t.Fatalf("unexpected level for %q: got=%s want=%s", raw, got, want)
		}
	}
}

func TestNilLoggerFallsBack(t *testing.T) {
	var logger *Logger
	logger.Info("ignored")
	if logger.With("k", "v") == nil {
		t.Fatalf("expected non-nil logger from nil receiver")
	}
}

func TestLoggerTeeWritesToBothCores(t *testing.T) {
	var buf bytes.Buffer
	base := New(Options{Level: LevelInfo, Output: &buf})
	core, observed := observer.New(zapcore.WarnLevel)

	logger := base.Tee(core)
	logger.Info("match registered", "match_id", "m_1")
	logger.Warn("match abandoned", "match_id", "m_1")

	if got := strings.Count(strings.TrimSpace(buf.String()), "\n") + 1; got != 2 {
		t.Fatalf("expected 2 stdout lines, got %d", got)
	}
	entries := observed.FilterMessage("match abandoned").All()
	if observed.Len() != 1 || len(entries) != 1 {
		t.Fatalf("expected only the warn entry in the tee, got %d", observed.Len())
	}
	if entries[0].ContextMap()["match_id"] != "m_1" {
		t.Fatalf("unexpected tee fields: %v", entries[0].ContextMap())
	}
}
