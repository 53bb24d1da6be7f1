package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rentbook/internal/amqp"
	"rentbook/internal/core"
	"rentbook/internal/records/memory"
	sheetsmem "rentbook/internal/sheets/memory"
)

type flakyLedger struct {
	mu    sync.Mutex
	fail  bool
	calls int
	inner *sheetsmem.Ledger
}

func (f *flakyLedger) AppendEntry(ctx context.Context, e core.MoneyEntry, name string) (string, error) {
	f.mu.Lock()
	f.calls++
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return "", errors.New("sheets unavailable")
	}
	return f.inner.AppendEntry(ctx, e, name)
}

func seedEntries(t *testing.T, store *memory.Store) (core.Property, []core.MoneyEntry) {
	t.Helper()
	ctx := context.Background()
	p, err := store.CreateProperty(ctx, core.Property{Nickname: "Elm St", Type: core.Flat, Active: true})
	if err != nil {
		t.Fatalf("CreateProperty() error = %v", err)
	}
	in := []core.MoneyEntry{
		{PropertyID: p.ID, Type: core.Income, Category: core.RentIncome, Amount: decimal.NewFromInt(950), Date: core.NewDate(2025, time.April, 7), TaxYear: "2025-26", Quarter: 1},
		{Type: core.Expense, Category: core.Travel, Amount: decimal.RequireFromString("12.40"), Date: core.NewDate(2025, time.March, 2), TaxYear: "2024-25", Quarter: 4},
	}
	var out []core.MoneyEntry
	for _, e := range in {
		saved, err := store.CreateEntry(ctx, e)
		if err != nil {
			t.Fatalf("CreateEntry() error = %v", err)
		}
		out = append(out, saved)
	}
	return p, out
}

func TestLedgerWorker_HandleSyncMessage(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	_, entries := seedEntries(t, store)
	ledger := sheetsmem.New("Ledger")
	w := NewLedgerWorker(store, ledger, 10)

	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage(entries[0].ID, entries[0].TaxYear)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}
	rows := ledger.Rows("2025-26 Ledger")
	if len(rows) != 2 {
		t.Fatalf("ledger rows = %d, want header + 1", len(rows))
	}
	want := []string{"2025-04-07", "income", "Rent Income", "Elm St", "950.00", "", "Q1"}
	for i := range want {
		if rows[1][i] != want[i] {
			t.Errorf("row[%d] = %q, want %q", i, rows[1][i], want[i])
		}
	}

	// duplicate delivery does not append twice
	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage(entries[0].ID, entries[0].TaxYear)); err != nil {
		t.Fatalf("HandleSyncMessage() error = %v", err)
	}
	if got := len(ledger.Rows("2025-26 Ledger")); got != 2 {
		t.Errorf("ledger rows after duplicate = %d, want 2", got)
	}

	pending, _ := store.PendingSync(ctx, 10)
	if len(pending) != 1 || pending[0].ID != entries[1].ID {
		t.Errorf("pending = %v, want only the unsynced entry", pending)
	}

	// unknown entries are dropped, not retried
	if err := w.HandleSyncMessage(ctx, amqp.NewEntrySyncMessage("missing", "2025-26")); err != nil {
		t.Errorf("HandleSyncMessage(missing) error = %v, want nil", err)
	}
}

func TestLedgerWorker_ProcessPending(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedEntries(t, store)
	ledger := &flakyLedger{fail: true, inner: sheetsmem.New("Ledger")}
	w := NewLedgerWorker(store, ledger, 10)

	n, err := w.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if n != 0 {
		t.Errorf("ProcessPending() with failing sheet = %d, want 0", n)
	}
	pending, _ := store.PendingSync(ctx, 10)
	if len(pending) != 2 {
		t.Fatalf("failed entries should stay pending, got %d", len(pending))
	}

	ledger.fail = false
	n, err = w.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ProcessPending() = %d, want 2", n)
	}
	if rows := ledger.inner.Rows("2024-25 Ledger"); len(rows) != 2 || rows[1][3] != "General" {
		t.Errorf("2024-25 rows = %v, want one General row", rows)
	}

	n, _ = w.ProcessPending(ctx)
	if n != 0 {
		t.Errorf("ProcessPending() after sync = %d, want 0", n)
	}
}

func TestLedgerWorker_StartupSyncCheck(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedEntries(t, store)
	ledger := sheetsmem.New("Ledger")

	// batch of 1 still drains both entries on startup (5x batch)
	w := NewLedgerWorker(store, ledger, 1)
	n, err := w.StartupSyncCheck(ctx)
	if err != nil {
		t.Fatalf("StartupSyncCheck() error = %v", err)
	}
	if n != 2 {
		t.Errorf("StartupSyncCheck() = %d, want 2", n)
	}
}

func TestNewLedgerWorker_DefaultBatch(t *testing.T) {
	w := NewLedgerWorker(nil, nil, 0)
	if w.batchSize != 10 {
		t.Errorf("batchSize = %d, want 10", w.batchSize)
	}
}

type countingStore struct {
	*memory.Store
	mu     sync.Mutex
	lookup int
}

func (c *countingStore) GetProperty(ctx context.Context, id string) (core.Property, error) {
	c.mu.Lock()
	c.lookup++
	c.mu.Unlock()
	return c.Store.GetProperty(ctx, id)
}

func TestLedgerWorker_CachesPropertyNames(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{Store: memory.New()}
	p, _ := seedEntries(t, store.Store)
	if _, err := store.CreateEntry(ctx, core.MoneyEntry{
		PropertyID: p.ID, Type: core.Expense, Category: core.Utilities,
		Amount: decimal.NewFromInt(80), Date: core.NewDate(2025, time.May, 2), TaxYear: "2025-26", Quarter: 1,
	}); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}

	ledger := sheetsmem.New("Ledger")
	w := NewLedgerWorker(store, ledger, 10)
	n, err := w.ProcessPending(ctx)
	if err != nil {
		t.Fatalf("ProcessPending() error = %v", err)
	}
	if n != 3 {
		t.Fatalf("ProcessPending() = %d, want 3", n)
	}
	if store.lookup != 1 {
		t.Errorf("GetProperty called %d times, want 1", store.lookup)
	}
	for _, row := range ledger.Rows("2025-26 Ledger")[1:] {
		if row[3] != "Elm St" {
			t.Errorf("property column = %q, want Elm St", row[3])
		}
	}
}

// markOnceFailing fails the first MarkSynced call for every entry.
type markOnceFailing struct {
	*memory.Store
	mu     sync.Mutex
	failed map[string]bool
}

func (m *markOnceFailing) MarkSynced(ctx context.Context, id string) error {
	m.mu.Lock()
	first := !m.failed[id]
	m.failed[id] = true
	m.mu.Unlock()
	if first {
		return errors.New("database is locked")
	}
	return m.Store.MarkSynced(ctx, id)
}

func TestLedgerWorker_RetriesMarkSynced(t *testing.T) {
	ctx := context.Background()
	store := &markOnceFailing{Store: memory.New(), failed: make(map[string]bool)}
	for _, d := range []int{1, 2, 3} {
		if _, err := store.CreateEntry(ctx, core.MoneyEntry{
			Type: core.Expense, Category: core.Utilities, Amount: decimal.NewFromInt(int64(10 * d)),
			Date: core.NewDate(2025, time.May, d), TaxYear: "2025-26", Quarter: 1,
		}); err != nil {
			t.Fatalf("CreateEntry() error = %v", err)
		}
	}
	ledger := sheetsmem.New("Ledger")
	w := NewLedgerWorker(store, ledger, 2)

	for i := 0; i < 4; i++ {
		if _, err := w.ProcessPending(ctx); err != nil {
			t.Fatalf("ProcessPending() error = %v", err)
		}
	}

	if pending, _ := store.PendingSync(ctx, 10); len(pending) != 0 {
		t.Errorf("pending after passes = %d, want 0", len(pending))
	}
	if rows := ledger.Rows("2025-26 Ledger"); len(rows) != 4 {
		t.Errorf("ledger rows = %d, want header + 3 with no duplicates", len(rows))
	}
}

func TestLedgerWorker_CompletesMarkWithoutSecondAppend(t *testing.T) {
	ctx := context.Background()
	store := &markOnceFailing{Store: memory.New(), failed: make(map[string]bool)}
	if _, err := store.CreateEntry(ctx, core.MoneyEntry{
		Type: core.Expense, Category: core.Utilities, Amount: decimal.NewFromInt(10),
		Date: core.NewDate(2025, time.May, 1), TaxYear: "2025-26", Quarter: 1,
	}); err != nil {
		t.Fatalf("CreateEntry() error = %v", err)
	}
	w := NewLedgerWorker(store, sheetsmem.New("Ledger"), 10)

	// first pass appends, the mark fails and is only logged
	if n, _ := w.ProcessPending(ctx); n != 1 {
		t.Errorf("first ProcessPending() = %d, want 1", n)
	}
	// second pass does not append again but completes the mark
	if n, _ := w.ProcessPending(ctx); n != 1 {
		t.Errorf("second ProcessPending() = %d, want 1", n)
	}
	if n, _ := w.ProcessPending(ctx); n != 0 {
		t.Errorf("third ProcessPending() = %d, want 0", n)
	}
}
