package fiscal

import (
	"sort"

	"github.com/shopspring/decimal"

	"rentbook/internal/core"
)

// BasicRate is the flat rate used for the tax estimate.
var BasicRate = decimal.RequireFromString("0.20")

// Key identifies one quarter of one tax year.
type Key struct {
	TaxYear string
	Quarter int
}

// Totals sums the entries of a bucket. Profit may be negative.
type Totals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Profit   decimal.Decimal
	Entries  int
}

func (t Totals) add(e core.MoneyEntry) Totals {
	switch e.Type {
	case core.Income:
		t.Income = t.Income.Add(e.Amount)
	case core.Expense:
		t.Expenses = t.Expenses.Add(e.Amount)
	}
	t.Profit = t.Income.Sub(t.Expenses)
	t.Entries++
	return t
}

// Bucket groups entries by the tax year and quarter derived from their dates.
// Stored TaxYear/Quarter fields are not trusted.
func Bucket(entries []core.MoneyEntry) map[Key]Totals {
	out := make(map[Key]Totals)
	for _, e := range entries {
		k := Key{TaxYear: TaxYearOf(e.Date), Quarter: TaxQuarterOf(e.Date)}
		out[k] = out[k].add(e)
	}
	return out
}

// Keys returns the bucket keys in chronological order.
func Keys(buckets map[Key]Totals) []Key {
	keys := make([]Key, 0, len(buckets))
	for k := range buckets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].TaxYear != keys[j].TaxYear {
			return keys[i].TaxYear < keys[j].TaxYear
		}
		return keys[i].Quarter < keys[j].Quarter
	})
	return keys
}

// EstimateTax is a flat basic-rate estimate: zero for a loss or break-even,
// otherwise 20% of profit rounded to pence. It models no allowances or bands.
func EstimateTax(profit decimal.Decimal) decimal.Decimal {
	if !profit.IsPositive() {
		return decimal.Zero
	}
	return profit.Mul(BasicRate).Round(2)
}

type QuarterSummary struct {
	Quarter      int
	Label        string
	Range        Range
	Income       decimal.Decimal
	Expenses     decimal.Decimal
	Profit       decimal.Decimal
	EstimatedTax decimal.Decimal
	HasData      bool
	IsCurrent    bool
}

// YearSummary always carries four quarters, with or without data.
type YearSummary struct {
	TaxYear  string
	Quarters [4]QuarterSummary
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Profit   decimal.Decimal
	// EstimatedTax is computed on the year-to-date profit, not summed per quarter.
	EstimatedTax decimal.Decimal
}

// SummariseYear builds the four-quarter report for taxYear. Entries outside
// the year are ignored. The current quarter is the one containing now under
// the same month rule used for bucketing.
func SummariseYear(taxYear string, entries []core.MoneyEntry, now core.Date) (YearSummary, error) {
	if _, err := StartYear(taxYear); err != nil {
		return YearSummary{}, err
	}
	buckets := Bucket(entries)
	nowYear, nowQuarter := TaxYearOf(now), TaxQuarterOf(now)

	ys := YearSummary{TaxYear: taxYear}
	for q := 1; q <= 4; q++ {
		r, _ := QuarterRange(taxYear, q)
		t := buckets[Key{TaxYear: taxYear, Quarter: q}]
		ys.Quarters[q-1] = QuarterSummary{
			Quarter:      q,
			Label:        QuarterLabel(q),
			Range:        r,
			Income:       t.Income,
			Expenses:     t.Expenses,
			Profit:       t.Profit,
			EstimatedTax: EstimateTax(t.Profit),
			HasData:      t.Entries > 0,
			IsCurrent:    taxYear == nowYear && q == nowQuarter,
		}
		ys.Income = ys.Income.Add(t.Income)
		ys.Expenses = ys.Expenses.Add(t.Expenses)
	}
	ys.Profit = ys.Income.Sub(ys.Expenses)
	ys.EstimatedTax = EstimateTax(ys.Profit)
	return ys, nil
}

// InTaxYear filters entries whose date falls in taxYear under the month rule.
func InTaxYear(entries []core.MoneyEntry, taxYear string) []core.MoneyEntry {
	var out []core.MoneyEntry
	for _, e := range entries {
		if TaxYearOf(e.Date) == taxYear {
			out = append(out, e)
		}
	}
	return out
}
