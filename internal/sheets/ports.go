// Package sheets declares the ledger export port. The Google implementation
// lives in sheets/google and an in-memory one in sheets/memory.
package sheets

import (
	"context"

	"rentbook/internal/core"
)

// LedgerWriter appends money entries to an external ledger.
type LedgerWriter interface {
	// AppendEntry writes e in export column order and returns a reference to
	// the written row. propertyName is the nickname shown in the Property column.
	AppendEntry(ctx context.Context, e core.MoneyEntry, propertyName string) (rowRef string, err error)
}

// TabName is the per-year ledger tab, e.g. "2024-25 Ledger".
func TabName(taxYear, base string) string {
	return taxYear + " " + base
}
