package fiscal

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"rentbook/internal/core"
)

// CSVHeader is the column order of the money export.
var CSVHeader = []string{"Date", "Type", "Category", "Property", "Amount", "Description", "Quarter"}

// GeneralProperty names entries that belong to no property.
const GeneralProperty = "General"

// Row flattens an entry into export columns. propertyNames maps property
// IDs to nicknames; entries without a known property are shown as General.
func Row(e core.MoneyEntry, propertyNames map[string]string) []string {
	property := GeneralProperty
	if name, ok := propertyNames[e.PropertyID]; ok && e.PropertyID != "" {
		property = name
	}
	return []string{
		e.Date.String(),
		string(e.Type),
		e.Category.Label(),
		property,
		e.Amount.StringFixed(2),
		e.Description,
		"Q" + strconv.Itoa(TaxQuarterOf(e.Date)),
	}
}

// WriteCSV writes a header row then one row per entry, every cell double
// quoted with embedded quotes doubled.
func WriteCSV(w io.Writer, entries []core.MoneyEntry, propertyNames map[string]string) error {
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, CSVHeader); err != nil {
		return err
	}
	for _, e := range entries {
		if err := writeRecord(bw, Row(e, propertyNames)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, cells []string) error {
	for i, c := range cells {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(`"` + strings.ReplaceAll(c, `"`, `""`) + `"`); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}
