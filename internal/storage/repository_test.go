package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rentbook/internal/core"
	"rentbook/internal/records"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "rentbook.db"))
	if err != nil {
		t.Fatalf("NewSQLiteRepository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestPropertyRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	p, err := repo.CreateProperty(ctx, core.Property{
		Nickname:               "Corner Shop",
		Type:                   core.Retail,
		EnabledComplianceTypes: []core.ComplianceType{core.EICR, core.FireRiskAssessment},
		Active:                 true,
	})
	if err != nil {
		t.Fatalf("CreateProperty: %v", err)
	}

	got, err := repo.GetProperty(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetProperty: %v", err)
	}
	if got.Nickname != "Corner Shop" || got.Type != core.Retail || !got.Active {
		t.Fatalf("unexpected property: %+v", got)
	}
	if len(got.EnabledComplianceTypes) != 2 || got.EnabledComplianceTypes[1] != core.FireRiskAssessment {
		t.Fatalf("enabled types = %v", got.EnabledComplianceTypes)
	}

	got.EnabledComplianceTypes = nil
	if err := repo.UpdateProperty(ctx, got); err != nil {
		t.Fatalf("UpdateProperty: %v", err)
	}
	got, _ = repo.GetProperty(ctx, p.ID)
	if got.EnabledComplianceTypes != nil {
		t.Fatalf("override not cleared: %v", got.EnabledComplianceTypes)
	}

	if _, err := repo.GetProperty(ctx, "missing"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.UpdateProperty(ctx, core.Property{ID: "missing", Nickname: "x", Type: core.Flat}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update, got %v", err)
	}
}

func TestComplianceRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	p, _ := repo.CreateProperty(ctx, core.Property{Nickname: "Flat 1", Type: core.Flat, Active: true})

	due := core.NewDate(2025, time.March, 31)
	rec, err := repo.CreateCompliance(ctx, core.ComplianceRecord{
		PropertyID:   p.ID,
		Type:         core.GasSafety,
		DueDate:      &due,
		ReminderDays: 14,
		Notes:        "engineer booked",
	})
	if err != nil {
		t.Fatalf("CreateCompliance: %v", err)
	}
	if _, err := repo.CreateCompliance(ctx, core.ComplianceRecord{PropertyID: p.ID, Type: core.EPC}); err != nil {
		t.Fatalf("CreateCompliance without due date: %v", err)
	}
	if _, err := repo.CreateCompliance(ctx, core.ComplianceRecord{PropertyID: "ghost", Type: core.EPC}); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := repo.UpdateComplianceStatus(ctx, rec.ID, core.StatusDueSoon); err != nil {
		t.Fatalf("UpdateComplianceStatus: %v", err)
	}

	list, err := repo.ListCompliance(ctx, p.ID)
	if err != nil || len(list) != 2 {
		t.Fatalf("ListCompliance: %d records, err=%v", len(list), err)
	}
	var gas, epc core.ComplianceRecord
	for _, r := range list {
		switch r.Type {
		case core.GasSafety:
			gas = r
		case core.EPC:
			epc = r
		}
	}
	if gas.DueDate == nil || *gas.DueDate != due || gas.ReminderDays != 14 || gas.Status != core.StatusDueSoon {
		t.Fatalf("unexpected gas record: %+v", gas)
	}
	if epc.DueDate != nil || epc.Status != core.StatusNotSet {
		t.Fatalf("unexpected epc record: %+v", epc)
	}
}

func TestMoneyEntriesAndSync(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	p, _ := repo.CreateProperty(ctx, core.Property{Nickname: "Flat 1", Type: core.Flat, Active: true})

	create := func(propertyID string, typ core.EntryType, cat core.MoneyCategory, amount string, d core.Date, year string, q int) core.MoneyEntry {
		t.Helper()
		e, err := repo.CreateEntry(ctx, core.MoneyEntry{
			PropertyID: propertyID, Type: typ, Category: cat,
			Amount: decimal.RequireFromString(amount), Date: d, TaxYear: year, Quarter: q,
		})
		if err != nil {
			t.Fatalf("CreateEntry: %v", err)
		}
		return e
	}
	rent := create(p.ID, core.Income, core.RentIncome, "950.00", core.NewDate(2024, time.May, 1), "2024-25", 1)
	create("", core.Expense, core.Travel, "12.34", core.NewDate(2024, time.April, 20), "2024-25", 1)
	create(p.ID, core.Expense, core.Insurance, "300", core.NewDate(2024, time.January, 3), "2023-24", 4)

	year, err := repo.ListEntries(ctx, records.EntryFilter{TaxYear: "2024-25"})
	if err != nil || len(year) != 2 {
		t.Fatalf("ListEntries(2024-25) = %d entries, err=%v", len(year), err)
	}
	if year[0].Category != core.Travel || year[0].PropertyID != "" {
		t.Fatalf("expected general travel entry first, got %+v", year[0])
	}
	if !year[0].Amount.Equal(decimal.RequireFromString("12.34")) {
		t.Fatalf("amount = %s", year[0].Amount)
	}

	byProperty, _ := repo.ListEntries(ctx, records.EntryFilter{PropertyID: p.ID})
	if len(byProperty) != 2 {
		t.Fatalf("ListEntries(property) = %d, want 2", len(byProperty))
	}

	got, err := repo.GetEntry(ctx, rent.ID)
	if err != nil || got.Quarter != 1 || got.TaxYear != "2024-25" {
		t.Fatalf("GetEntry = %+v, err=%v", got, err)
	}
	if _, err := repo.GetEntry(ctx, "missing"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	pending, _ := repo.PendingSync(ctx, 10)
	if len(pending) != 3 {
		t.Fatalf("pending = %d, want 3", len(pending))
	}
	if err := repo.MarkSynced(ctx, rent.ID); err != nil {
		t.Fatalf("MarkSynced: %v", err)
	}
	for _, e := range pending {
		if e.ID != rent.ID {
			if err := repo.MarkSyncError(ctx, e.ID); err != nil {
				t.Fatalf("MarkSyncError: %v", err)
			}
			break
		}
	}
	pending, _ = repo.PendingSync(ctx, 10)
	if len(pending) != 2 {
		t.Fatalf("pending after sync = %d, want 2 (failed rows are retried)", len(pending))
	}
	if err := repo.MarkSynced(ctx, "missing"); !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTenancies(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)
	p, _ := repo.CreateProperty(ctx, core.Property{Nickname: "House", Type: core.House, Active: true})

	if _, err := repo.CreateTenancy(ctx, core.Tenancy{
		PropertyID: p.ID, TenantName: "Alex", RentAmount: decimal.RequireFromString("200"),
		Frequency: core.Weekly, Active: true,
	}); err != nil {
		t.Fatalf("CreateTenancy: %v", err)
	}
	ts, err := repo.ListTenancies(ctx)
	if err != nil || len(ts) != 1 {
		t.Fatalf("ListTenancies = %d, err=%v", len(ts), err)
	}
	if ts[0].Frequency != core.Weekly || !ts[0].RentAmount.Equal(decimal.NewFromInt(200)) || !ts[0].Active {
		t.Fatalf("unexpected tenancy: %+v", ts[0])
	}
}

func TestMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rentbook.db")
	if err := RunMigrations(path); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := RunMigrations(path); err != nil {
		t.Fatalf("second run: %v", err)
	}
}

func TestCreateEntryReturnsStoredAmount(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	e, err := repo.CreateEntry(ctx, core.MoneyEntry{
		Type: core.Expense, Category: core.Utilities, Amount: decimal.RequireFromString("10.005"),
		Date: core.NewDate(2025, time.May, 1), TaxYear: "2025-26", Quarter: 1,
	})
	if err != nil {
		t.Fatalf("CreateEntry: %v", err)
	}
	got, err := repo.GetEntry(ctx, e.ID)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if !e.Amount.Equal(got.Amount) || got.Amount.String() != "10.01" {
		t.Errorf("CreateEntry amount = %s, stored = %s, want both 10.01", e.Amount, got.Amount)
	}
}
