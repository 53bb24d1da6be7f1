package services

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"rentbook/internal/core"
	"rentbook/internal/fiscal"
	"rentbook/internal/log"
	"rentbook/internal/records"
)

// ReportService derives tax and portfolio reports from stored records.
type ReportService struct {
	store      records.Store
	compliance *ComplianceService
}

func NewReportService(store records.Store, compliance *ComplianceService) *ReportService {
	return &ReportService{
		store:      store,
		compliance: compliance,
	}
}

// TaxYear returns the four-quarter report for taxYear ("2024-25").
func (s *ReportService) TaxYear(ctx context.Context, taxYear string, now core.Date) (fiscal.YearSummary, error) {
	if _, err := fiscal.StartYear(taxYear); err != nil {
		return fiscal.YearSummary{}, err
	}
	entries, err := s.store.ListEntries(ctx, records.EntryFilter{TaxYear: taxYear})
	if err != nil {
		return fiscal.YearSummary{}, fmt.Errorf("list money entries: %w", err)
	}
	summary, err := fiscal.SummariseYear(taxYear, entries, now)
	if err != nil {
		return fiscal.YearSummary{}, err
	}
	logger(ctx, log.ComponentReport).DebugContext(ctx, "Tax year summarised",
		log.FieldOperation, log.OpReport,
		log.FieldTaxYear, taxYear,
		log.FieldCount, len(entries))
	return summary, nil
}

// Dashboard is the portfolio overview at one day.
type Dashboard struct {
	AsOf             core.Date
	ActiveProperties int
	Overdue          int
	DueSoon          int

	TaxYear    string
	Quarter    int
	Current    fiscal.Totals
	QuarterTax decimal.Decimal

	MonthlyRent  decimal.Decimal
	OverallScore int
}

// Dashboard computes every figure against the same now. Statuses are
// recomputed rather than read from the store.
func (s *ReportService) Dashboard(ctx context.Context, now core.Date) (Dashboard, error) {
	portfolio, err := s.compliance.Portfolio(ctx, now)
	if err != nil {
		return Dashboard{}, err
	}

	d := Dashboard{
		AsOf:             now,
		ActiveProperties: len(portfolio.Properties),
		OverallScore:     portfolio.OverallScore,
		TaxYear:          fiscal.TaxYearOf(now),
		Quarter:          fiscal.TaxQuarterOf(now),
	}
	active := make(map[string]bool, len(portfolio.Properties))
	for _, rep := range portfolio.Properties {
		active[rep.Property.ID] = true
		counts := rep.Counts()
		d.Overdue += counts[core.StatusOverdue]
		d.DueSoon += counts[core.StatusDueSoon]
	}

	entries, err := s.store.ListEntries(ctx, records.EntryFilter{TaxYear: d.TaxYear})
	if err != nil {
		return Dashboard{}, fmt.Errorf("list money entries: %w", err)
	}
	d.Current = fiscal.Bucket(entries)[fiscal.Key{TaxYear: d.TaxYear, Quarter: d.Quarter}]
	d.QuarterTax = fiscal.EstimateTax(d.Current.Profit)

	tenancies, err := s.store.ListTenancies(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list tenancies: %w", err)
	}
	d.MonthlyRent = MonthlyRentRoll(tenancies, active)
	return d, nil
}

// MonthlyRentRoll sums the monthly rent of active tenancies whose property is
// in active. A nil map accepts every property.
func MonthlyRentRoll(tenancies []core.Tenancy, active map[string]bool) decimal.Decimal {
	total := decimal.Zero
	for _, t := range tenancies {
		if active != nil && !active[t.PropertyID] {
			continue
		}
		total = total.Add(t.MonthlyRent())
	}
	return total
}

// Export writes the entries of taxYear as CSV, oldest first.
func (s *ReportService) Export(ctx context.Context, w io.Writer, taxYear string) (int, error) {
	if _, err := fiscal.StartYear(taxYear); err != nil {
		return 0, err
	}
	entries, err := s.store.ListEntries(ctx, records.EntryFilter{TaxYear: taxYear})
	if err != nil {
		return 0, fmt.Errorf("list money entries: %w", err)
	}
	properties, err := s.store.ListProperties(ctx)
	if err != nil {
		return 0, fmt.Errorf("list properties: %w", err)
	}
	names := make(map[string]string, len(properties))
	for _, p := range properties {
		names[p.ID] = p.Nickname
	}

	if err := fiscal.WriteCSV(w, entries, names); err != nil {
		return 0, fmt.Errorf("write csv: %w", err)
	}
	logger(ctx, log.ComponentReport).InfoContext(ctx, "Tax year exported",
		log.FieldOperation, log.OpExport,
		log.FieldTaxYear, taxYear,
		log.FieldCount, len(entries))
	return len(entries), nil
}
