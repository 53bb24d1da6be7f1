// Package records declares the persistence ports the services depend on.
// Implementations live in records/memory and storage.
package records

import (
	"context"
	"errors"

	"rentbook/internal/core"
)

// ErrNotFound is returned when a record with the requested ID does not exist.
var ErrNotFound = errors.New("record not found")

// Ports for outbound adapters.
type (
	PropertyStore interface {
		// CreateProperty stores p and returns it with its assigned ID.
		CreateProperty(ctx context.Context, p core.Property) (core.Property, error)
		GetProperty(ctx context.Context, id string) (core.Property, error)
		// ListProperties returns every property, inactive ones included, ordered by nickname.
		ListProperties(ctx context.Context) ([]core.Property, error)
		UpdateProperty(ctx context.Context, p core.Property) error
	}

	ComplianceStore interface {
		CreateCompliance(ctx context.Context, r core.ComplianceRecord) (core.ComplianceRecord, error)
		// ListCompliance returns all records; an empty propertyID means every property.
		ListCompliance(ctx context.Context, propertyID string) ([]core.ComplianceRecord, error)
		UpdateComplianceStatus(ctx context.Context, id string, status core.ComplianceStatus) error
	}

	MoneyStore interface {
		CreateEntry(ctx context.Context, e core.MoneyEntry) (core.MoneyEntry, error)
		GetEntry(ctx context.Context, id string) (core.MoneyEntry, error)
		// ListEntries returns entries matching f ordered by date, oldest first.
		ListEntries(ctx context.Context, f EntryFilter) ([]core.MoneyEntry, error)

		// PendingSync returns up to limit entries not yet copied to the ledger sheet.
		PendingSync(ctx context.Context, limit int) ([]core.MoneyEntry, error)
		MarkSynced(ctx context.Context, id string) error
		MarkSyncError(ctx context.Context, id string) error
	}

	TenancyStore interface {
		CreateTenancy(ctx context.Context, t core.Tenancy) (core.Tenancy, error)
		ListTenancies(ctx context.Context) ([]core.Tenancy, error)
	}

	// Store is the full persistence surface a backend provides.
	Store interface {
		PropertyStore
		ComplianceStore
		MoneyStore
		TenancyStore
		Close() error
	}
)

// EntryFilter narrows ListEntries. Zero fields match everything.
type EntryFilter struct {
	TaxYear    string
	PropertyID string
}

// Match reports whether e passes the filter.
func (f EntryFilter) Match(e core.MoneyEntry) bool {
	if f.TaxYear != "" && e.TaxYear != f.TaxYear {
		return false
	}
	if f.PropertyID != "" && e.PropertyID != f.PropertyID {
		return false
	}
	return true
}
