// Package backend wires the collaborators selected by configuration: the
// record store, the optional AMQP publisher and the optional ledger sheet.
package backend

import (
	"fmt"

	"rentbook/internal/config"
)

// BackendType represents the type of record store
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type         BackendType
	SQLiteDBPath string

	// Publishing is disabled when AMQPURL is empty.
	AMQPURL        string
	AMQPExchange   string
	AMQPSyncQueue  string
	AMQPAlertQueue string

	// The Sheets ledger is disabled when GoogleSpreadsheetID is empty.
	GoogleSpreadsheetID   string
	GoogleLedgerSheet     string
	GoogleOAuthClientFile string
	GoogleOAuthTokenFile  string
	GoogleOAuthClientJSON string
	GoogleOAuthTokenJSON  string
}

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	backendType := BackendType(appConfig.DataBackend)
	if !backendType.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", appConfig.DataBackend)
	}

	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,

		AMQPURL:        appConfig.AMQPURL,
		AMQPExchange:   appConfig.AMQPExchange,
		AMQPSyncQueue:  appConfig.AMQPSyncQueue,
		AMQPAlertQueue: appConfig.AMQPAlertQueue,

		GoogleSpreadsheetID:   appConfig.GoogleSpreadsheetID,
		GoogleLedgerSheet:     appConfig.GoogleLedgerSheet,
		GoogleOAuthClientFile: appConfig.GoogleOAuthClientFile,
		GoogleOAuthTokenFile:  appConfig.GoogleOAuthTokenFile,
		GoogleOAuthClientJSON: appConfig.GoogleOAuthClientJSON,
		GoogleOAuthTokenJSON:  appConfig.GoogleOAuthTokenJSON,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == SQLiteBackend && c.SQLiteDBPath == "" {
		return fmt.Errorf("SQLite database path is required for sqlite backend")
	}
	if c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPSyncQueue == "" || c.AMQPAlertQueue == "") {
		return fmt.Errorf("AMQP exchange and queue names are required when AMQP is enabled")
	}
	if c.GoogleSpreadsheetID != "" && c.GoogleLedgerSheet == "" {
		return fmt.Errorf("Google ledger sheet name is required when a spreadsheet ID is set")
	}
	return nil
}

// GetBackendTypes returns all valid backend types
func GetBackendTypes() []BackendType {
	return []BackendType{SQLiteBackend, MemoryBackend}
}
