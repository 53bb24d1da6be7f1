package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestLoggerTagsComponent(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: slog.LevelDebug, Component: ComponentCompliance, Output: &buf})
	l.Info("status changed", FieldStatus, "overdue")

	out := buf.String()
	if !strings.Contains(out, "component=compliance") || !strings.Contains(out, "status=overdue") {
		t.Fatalf("unexpected output: %q", out)
	}

	buf.Reset()
	l.WithComponent(ComponentMoney).Debug("entry")
	if !strings.Contains(buf.String(), "component=money") {
		t.Fatalf("WithComponent not applied: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFields(t *testing.T) {
	f := NewFields().WithOperation(OpRefresh).WithError(errors.New("boom")).WithError(nil)
	if f[FieldOperation] != OpRefresh || f[FieldError] != "boom" {
		t.Fatalf("unexpected fields: %v", f)
	}
	if got := len(f.ToSlice()); got != 4 {
		t.Fatalf("ToSlice length = %d, want 4", got)
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Component: ComponentWorker, Output: &buf})
	ctx, id := WithRun(NewContext(context.Background(), l))
	if id == "" {
		t.Fatalf("empty run id")
	}
	FromContext(ctx).Info("pass done")
	if !strings.Contains(buf.String(), "run_id="+id) {
		t.Fatalf("run id missing: %q", buf.String())
	}
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}
