// Package memory keeps ledger rows in process. Useful for tests and dry runs.
package memory

import (
	"context"
	"fmt"
	"sync"

	"rentbook/internal/core"
	"rentbook/internal/fiscal"
	"rentbook/internal/sheets"
)

type Ledger struct {
	mu   sync.Mutex
	base string
	tabs map[string][][]string
}

var _ sheets.LedgerWriter = (*Ledger)(nil)

func New(base string) *Ledger {
	return &Ledger{base: base, tabs: make(map[string][][]string)}
}

// AppendEntry stores the row under the entry's tax year tab. A new tab starts
// with the header row, mirroring the spreadsheet layout.
func (l *Ledger) AppendEntry(_ context.Context, e core.MoneyEntry, propertyName string) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	names := map[string]string{}
	if e.PropertyID != "" && propertyName != "" {
		names[e.PropertyID] = propertyName
	}
	tab := sheets.TabName(fiscal.TaxYearOf(e.Date), l.base)

	l.mu.Lock()
	defer l.mu.Unlock()
	rows := l.tabs[tab]
	if len(rows) == 0 {
		rows = append(rows, fiscal.CSVHeader)
	}
	rows = append(rows, fiscal.Row(e, names))
	l.tabs[tab] = rows
	return fmt.Sprintf("mem:%s!%d", tab, len(rows)), nil
}

// Rows returns a copy of the rows in tab, header included.
func (l *Ledger) Rows(tab string) [][]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([][]string, len(l.tabs[tab]))
	for i, r := range l.tabs[tab] {
		out[i] = append([]string(nil), r...)
	}
	return out
}
