// Package worker holds the long running jobs of rentbook-worker: copying
// recorded money entries to the ledger sheet and refreshing compliance
// statuses on a schedule.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"rentbook/internal/amqp"
	"rentbook/internal/cache"
	"rentbook/internal/core"
	"rentbook/internal/fiscal"
	"rentbook/internal/log"
	"rentbook/internal/records"
	"rentbook/internal/sheets"
)

// LedgerStore is the part of the record store the ledger worker reads.
type LedgerStore interface {
	GetProperty(ctx context.Context, id string) (core.Property, error)
	records.MoneyStore
}

// LedgerWorker appends money entries from the store to the ledger sheet.
// The store stays the source of truth; a failed append leaves the entry
// pending for the next ProcessPending pass.
type LedgerWorker struct {
	store     LedgerStore
	ledger    sheets.LedgerWriter
	batchSize int

	// mu serialises appends from the consumer and the pending scan.
	mu     sync.Mutex
	synced *cache.LRU[struct{}]
	names  *cache.LRU[string]
}

const (
	syncedCacheSize = 4096
	nameCacheSize   = 256
	nameCacheTTL    = 10 * time.Minute
)

func NewLedgerWorker(store LedgerStore, ledger sheets.LedgerWriter, batchSize int) *LedgerWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &LedgerWorker{
		store:     store,
		ledger:    ledger,
		batchSize: batchSize,
		synced:    cache.New[struct{}](syncedCacheSize, 0),
		names:     cache.New[string](nameCacheSize, nameCacheTTL),
	}
}

// HandleSyncMessage processes a single entry sync message from AMQP.
// Messages for entries that no longer exist are dropped.
func (w *LedgerWorker) HandleSyncMessage(ctx context.Context, msg *amqp.EntrySyncMessage) error {
	l := log.FromContext(ctx).WithComponent(log.ComponentWorker)
	l.InfoContext(ctx, "Processing sync message",
		log.FieldEntryID, msg.EntryID,
		log.FieldTaxYear, msg.TaxYear)

	entry, err := w.store.GetEntry(ctx, msg.EntryID)
	if errors.Is(err, records.ErrNotFound) {
		l.WarnContext(ctx, "Entry not found, dropping sync message", log.FieldEntryID, msg.EntryID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get entry from storage: %w", err)
	}

	if err := w.syncEntry(ctx, entry); err != nil {
		l.ErrorContext(ctx, "Failed to sync entry, left for retry",
			log.FieldEntryID, entry.ID,
			log.FieldError, err)
	}
	return nil
}

// ProcessPending syncs up to one batch of entries not yet on the sheet.
// It is the backup path for lost AMQP messages and failed appends.
func (w *LedgerWorker) ProcessPending(ctx context.Context) (int, error) {
	return w.processPending(ctx, w.batchSize)
}

// StartupSyncCheck runs a larger pending pass when the worker starts.
func (w *LedgerWorker) StartupSyncCheck(ctx context.Context) (int, error) {
	return w.processPending(ctx, w.batchSize*5)
}

func (w *LedgerWorker) processPending(ctx context.Context, limit int) (int, error) {
	l := log.FromContext(ctx).WithComponent(log.ComponentWorker)
	if n := w.names.CleanExpired(); n > 0 {
		l.DebugContext(ctx, "Dropped expired property names", log.FieldCount, n)
	}

	pending, err := w.store.PendingSync(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("get pending entries: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}

	l.InfoContext(ctx, "Processing pending entries", log.FieldCount, len(pending))

	synced, failed := 0, 0
	for _, e := range pending {
		if err := ctx.Err(); err != nil {
			return synced, err
		}
		if err := w.syncEntry(ctx, e); err != nil {
			l.ErrorContext(ctx, "Failed to sync entry",
				log.FieldEntryID, e.ID,
				log.FieldError, err)
			failed++
			continue
		}
		synced++
	}

	l.InfoContext(ctx, "Pending sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return synced, nil
}

func (w *LedgerWorker) syncEntry(ctx context.Context, e core.MoneyEntry) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	l := log.FromContext(ctx).WithComponent(log.ComponentWorker)
	if w.synced.Contains(e.ID) {
		// Already on the sheet; only the store still has it pending.
		l.DebugContext(ctx, "Entry already appended by this worker", log.FieldEntryID, e.ID)
		if err := w.store.MarkSynced(ctx, e.ID); err != nil {
			return fmt.Errorf("mark appended entry as synced: %w", err)
		}
		return nil
	}

	name, err := w.propertyName(ctx, e.PropertyID)
	if err != nil {
		return err
	}

	ref, err := w.ledger.AppendEntry(ctx, e, name)
	if err != nil {
		if markErr := w.store.MarkSyncError(ctx, e.ID); markErr != nil {
			l.ErrorContext(ctx, "Failed to mark sync error", log.FieldEntryID, e.ID, log.FieldError, markErr)
		}
		return fmt.Errorf("append to ledger: %w", err)
	}
	w.synced.Set(e.ID, struct{}{})

	if err := w.store.MarkSynced(ctx, e.ID); err != nil {
		// The row is on the sheet; the in-memory set stops a second append.
		l.ErrorContext(ctx, "Failed to mark as synced", log.FieldEntryID, e.ID, log.FieldError, err)
	}

	l.InfoContext(ctx, "Successfully synced entry",
		log.NewFields().
			WithOperation(log.OpSync).
			WithEntry(e.ID, string(e.Category), e.Amount, e.TaxYear, e.Quarter).
			ToSlice()...,
	)
	l.DebugContext(ctx, "Ledger row", log.FieldSheetsRef, ref)
	return nil
}

func (w *LedgerWorker) propertyName(ctx context.Context, id string) (string, error) {
	if id == "" {
		return fiscal.GeneralProperty, nil
	}
	if name, ok := w.names.Get(id); ok {
		return name, nil
	}
	p, err := w.store.GetProperty(ctx, id)
	if errors.Is(err, records.ErrNotFound) {
		return fiscal.GeneralProperty, nil
	}
	if err != nil {
		return "", fmt.Errorf("get property: %w", err)
	}
	w.names.Set(id, p.Nickname)
	return p.Nickname, nil
}

// RunPendingSync runs ProcessPending every interval until ctx is done.
func (w *LedgerWorker) RunPendingSync(ctx context.Context, interval time.Duration) error {
	return Every(ctx, interval, false, func(ctx context.Context) {
		if _, err := w.ProcessPending(ctx); err != nil {
			log.FromContext(ctx).WithComponent(log.ComponentWorker).
				ErrorContext(ctx, "Periodic sync failed", log.FieldError, err)
		}
	})
}
