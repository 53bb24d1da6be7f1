// Package fiscal maps calendar days onto the UK tax calendar and buckets
// money entries into tax year quarters.
//
// Bucketing switches tax year at the April month boundary (day of month is
// ignored), while QuarterRange reports the statutory April 6 anchored ranges.
// Entries dated April 1 to 5 therefore land in Q1 of the new year even though
// QuarterRange places those days in Q4 of the previous one.
package fiscal

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"rentbook/internal/core"
)

var (
	ErrInvalidTaxYear = errors.New("invalid tax year")
	ErrInvalidQuarter = errors.New("invalid quarter")
)

// Range is an inclusive span of calendar days.
type Range struct {
	Start core.Date
	End   core.Date
}

// Contains reports whether d falls within r, bounds included.
func (r Range) Contains(d core.Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// TaxYearOf returns the tax year label ("2024-25") for d.
func TaxYearOf(d core.Date) string {
	start := d.Year()
	if d.Month() < time.April {
		start--
	}
	return yearLabel(start)
}

// TaxQuarterOf returns 1..4: Apr-Jun, Jul-Sep, Oct-Dec, Jan-Mar.
func TaxQuarterOf(d core.Date) int {
	m := int(d.Month())
	if m >= 4 {
		return (m-4)/3 + 1
	}
	return 4
}

// Assign derives the tax year and quarter stored on e from its date.
func Assign(e *core.MoneyEntry) {
	e.TaxYear = TaxYearOf(e.Date)
	e.Quarter = TaxQuarterOf(e.Date)
}

// Consistent reports whether the stored tax year and quarter of e agree with
// the values derived from its date.
func Consistent(e core.MoneyEntry) bool {
	return e.TaxYear == TaxYearOf(e.Date) && e.Quarter == TaxQuarterOf(e.Date)
}

func yearLabel(start int) string {
	return fmt.Sprintf("%d-%02d", start, (start+1)%100)
}

// StartYear parses a "YYYY-YY" label and returns the calendar year in which
// the tax year begins.
func StartYear(taxYear string) (int, error) {
	if len(taxYear) != 7 || taxYear[4] != '-' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTaxYear, taxYear)
	}
	start, err := strconv.Atoi(taxYear[:4])
	if err != nil || start < 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTaxYear, taxYear)
	}
	if yearLabel(start) != taxYear {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTaxYear, taxYear)
	}
	return start, nil
}

// QuarterRange returns the April 6 anchored day range of quarter q in taxYear.
//
//	Q1  6 Apr - 5 Jul
//	Q2  6 Jul - 5 Oct
//	Q3  6 Oct - 5 Jan
//	Q4  6 Jan - 5 Apr
func QuarterRange(taxYear string, q int) (Range, error) {
	start, err := StartYear(taxYear)
	if err != nil {
		return Range{}, err
	}
	if q < 1 || q > 4 {
		return Range{}, fmt.Errorf("%w: %d", ErrInvalidQuarter, q)
	}
	first := core.NewDate(start, time.April+time.Month(3*(q-1)), 6)
	next := core.Date{Time: first.AddDate(0, 3, 0)}
	return Range{Start: first, End: next.AddDays(-1)}, nil
}

// YearRange returns 6 April to 5 April of the following year.
func YearRange(taxYear string) (Range, error) {
	first, err := QuarterRange(taxYear, 1)
	if err != nil {
		return Range{}, err
	}
	last, _ := QuarterRange(taxYear, 4)
	return Range{Start: first.Start, End: last.End}, nil
}

// QuarterLabel is the display name of a quarter, e.g. "Q1 (Apr-Jun)".
func QuarterLabel(q int) string {
	switch q {
	case 1:
		return "Q1 (Apr-Jun)"
	case 2:
		return "Q2 (Jul-Sep)"
	case 3:
		return "Q3 (Oct-Dec)"
	case 4:
		return "Q4 (Jan-Mar)"
	default:
		return "Q" + strconv.Itoa(q)
	}
}
