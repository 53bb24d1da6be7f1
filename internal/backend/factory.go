package backend

import (
	"context"
	"fmt"

	"rentbook/internal/amqp"
	"rentbook/internal/log"
	"rentbook/internal/records"
	"rentbook/internal/records/memory"
	"rentbook/internal/services"
	"rentbook/internal/sheets"
	gsheet "rentbook/internal/sheets/google"
	"rentbook/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// Result holds the opened collaborators. Publisher is nil when AMQP is
// disabled or unreachable.
type Result struct {
	Store     records.Store
	Publisher services.Publisher
	AMQP      *amqp.Client
	Cleanup   CleanupFunc
}

// Factory opens backends based on configuration
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Open creates the record store and, when configured, the AMQP client.
// A broker that cannot be reached is logged and publishing is disabled;
// the store is the source of truth and the worker catches up later.
func (f *Factory) Open(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := f.openStore(cfg)
	if err != nil {
		return nil, err
	}
	res := &Result{Store: store}

	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPSyncQueue, cfg.AMQPAlertQueue)
		if err != nil {
			f.logger.WarnContext(ctx, "Failed to initialize AMQP client, continuing without publishing", log.FieldError, err)
		} else {
			res.AMQP = client
			res.Publisher = client
			f.logger.InfoContext(ctx, "Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"sync_queue", cfg.AMQPSyncQueue,
				"alert_queue", cfg.AMQPAlertQueue)
		}
	}

	res.Cleanup = func() error {
		return services.New(res.Store, res.Publisher).Close()
	}
	return res, nil
}

func (f *Factory) openStore(cfg Config) (records.Store, error) {
	switch cfg.Type {
	case SQLiteBackend:
		repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
		}
		f.logger.Info("Initialized SQLite backend", "db_path", cfg.SQLiteDBPath)
		return repo, nil
	case MemoryBackend:
		f.logger.Info("Initialized memory backend; records are lost on exit")
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

// OpenLedger returns the Google Sheets ledger, or nil when no spreadsheet
// is configured.
func (f *Factory) OpenLedger(ctx context.Context, cfg Config) (sheets.LedgerWriter, error) {
	if cfg.GoogleSpreadsheetID == "" {
		f.logger.InfoContext(ctx, "Google Sheets disabled - no GOOGLE_SPREADSHEET_ID provided")
		return nil, nil
	}
	client, err := gsheet.New(ctx, gsheet.Options{
		SpreadsheetID:   cfg.GoogleSpreadsheetID,
		LedgerSheet:     cfg.GoogleLedgerSheet,
		OAuthClientFile: cfg.GoogleOAuthClientFile,
		OAuthTokenFile:  cfg.GoogleOAuthTokenFile,
		OAuthClientJSON: cfg.GoogleOAuthClientJSON,
		OAuthTokenJSON:  cfg.GoogleOAuthTokenJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.InfoContext(ctx, "Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	return client, nil
}
