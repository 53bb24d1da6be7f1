package backend

import (
	"context"
	"path/filepath"
	"testing"

	"rentbook/internal/config"
	"rentbook/internal/core"
)

func TestBackendType_IsValid(t *testing.T) {
	tests := []struct {
		bt   BackendType
		want bool
	}{
		{SQLiteBackend, true},
		{MemoryBackend, true},
		{"sheets", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.bt), func(t *testing.T) {
			if got := tt.bt.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("FromAppConfig(nil) should fail")
	}

	app := &config.Config{
		DataBackend:       "memory",
		AMQPURL:           "amqp://localhost",
		AMQPExchange:      "rentbook",
		AMQPSyncQueue:     "ledger_sync",
		AMQPAlertQueue:    "compliance_alerts",
		GoogleLedgerSheet: "Ledger",
	}
	cfg, err := FromAppConfig(app)
	if err != nil {
		t.Fatalf("FromAppConfig() error = %v", err)
	}
	if cfg.Type != MemoryBackend || cfg.AMQPAlertQueue != "compliance_alerts" || cfg.GoogleLedgerSheet != "Ledger" {
		t.Errorf("FromAppConfig() = %+v", cfg)
	}

	app.DataBackend = "postgres"
	if _, err := FromAppConfig(app); err == nil {
		t.Error("FromAppConfig() should reject unknown backends")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"memory", Config{Type: MemoryBackend}, false},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "x.db"}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"unknown", Config{Type: "csv"}, true},
		{"amqp without queues", Config{Type: MemoryBackend, AMQPURL: "amqp://x"}, true},
		{"sheet without tab", Config{Type: MemoryBackend, GoogleSpreadsheetID: "abc"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestFactory_Open(t *testing.T) {
	ctx := context.Background()
	f := NewFactory(nil)

	tests := []struct {
		name string
		cfg  Config
	}{
		{"memory", Config{Type: MemoryBackend}},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(t.TempDir(), "rentbook.db")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := f.Open(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			if res.Publisher != nil || res.AMQP != nil {
				t.Error("publisher should be nil without AMQP_URL")
			}

			p, err := res.Store.CreateProperty(ctx, core.Property{Nickname: "Elm St", Type: core.Flat, Active: true})
			if err != nil {
				t.Fatalf("CreateProperty() error = %v", err)
			}
			if _, err := res.Store.GetProperty(ctx, p.ID); err != nil {
				t.Errorf("GetProperty() error = %v", err)
			}
			if err := res.Cleanup(); err != nil {
				t.Errorf("Cleanup() error = %v", err)
			}
		})
	}

	if _, err := f.Open(ctx, Config{Type: "csv"}); err == nil {
		t.Error("Open() should reject unknown backends")
	}
}

func TestFactory_OpenLedger_Disabled(t *testing.T) {
	ledger, err := NewFactory(nil).OpenLedger(context.Background(), Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("OpenLedger() error = %v", err)
	}
	if ledger != nil {
		t.Error("OpenLedger() should return nil without a spreadsheet ID")
	}
}
