package cli

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"rentbook/internal/config"
	"rentbook/internal/core"
)

func TestTodayAt(t *testing.T) {
	// 23:30 UTC on 31 March is already 1 April in London (BST).
	instant := time.Date(2025, time.March, 31, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		timezone string
		want     core.Date
	}{
		{"london", "Europe/London", core.NewDate(2025, time.April, 1)},
		{"utc", "UTC", core.NewDate(2025, time.March, 31)},
		{"invalid falls back to utc", "Mars/Olympus", core.NewDate(2025, time.March, 31)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TodayAt(&config.Config{Timezone: tt.timezone}, instant)
			if !got.Equal(tt.want.Time) {
				t.Errorf("TodayAt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger("debug")
	if logger == nil {
		t.Fatal("SetupLogger() returned nil")
	}
	if !logger.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
	if logger.Component() != "cli" {
		t.Errorf("Component() = %q, want cli", logger.Component())
	}
}
