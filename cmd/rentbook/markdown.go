package main

import (
	"fmt"
	"strings"

	"rentbook/internal/compliance"
	"rentbook/internal/core"
	"rentbook/internal/fiscal"
	"rentbook/internal/services"
)

func propertiesMarkdown(properties []core.Property) string {
	var b strings.Builder
	b.WriteString("# Properties\n\n")
	if len(properties) == 0 {
		b.WriteString("No properties yet.\n")
		return b.String()
	}
	b.WriteString("| Nickname | Type | Category | Active | ID |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, p := range properties {
		active := "yes"
		if !p.Active {
			active = "no"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | `%s` |\n",
			cell(p.Nickname), p.Type.Label(), compliance.CategoryOf(p.Type), active, p.ID)
	}
	return b.String()
}

func portfolioMarkdown(rep services.PortfolioReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Compliance as of %s\n\n", rep.AsOf)
	fmt.Fprintf(&b, "Overall score: **%d%%**\n\n", rep.OverallScore)
	if len(rep.Properties) == 0 {
		b.WriteString("No active properties.\n")
		return b.String()
	}
	b.WriteString("| Property | Score | Overdue | Due soon | Missing |\n")
	b.WriteString("|---|---:|---:|---:|---:|\n")
	for _, p := range rep.Properties {
		counts := p.Counts()
		fmt.Fprintf(&b, "| %s | %d%% | %d | %d | %d |\n",
			cell(p.Property.Nickname), p.Score,
			counts[core.StatusOverdue], counts[core.StatusDueSoon], len(p.Missing))
	}
	return b.String()
}

func propertyMarkdown(rep services.PropertyReport, today core.Date) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", rep.Property.Nickname)
	fmt.Fprintf(&b, "%s, %s. Score **%d%%** as of %s.\n\n", rep.Property.Type.Label(), rep.Category, rep.Score, today)

	reps := compliance.Representatives(rep.Property.ID, rep.Records)
	b.WriteString("| Item | Status | Due | Days left |\n")
	b.WriteString("|---|---|---|---:|\n")
	for _, t := range rep.Relevant {
		r, ok := reps[t]
		if !ok {
			fmt.Fprintf(&b, "| %s | missing | | |\n", t.Label())
			continue
		}
		due, days := "", ""
		if r.DueDate != nil {
			due = r.DueDate.String()
			days = fmt.Sprint(today.DaysUntil(*r.DueDate))
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", t.Label(), r.Status.Label(), due, days)
	}
	return b.String()
}

func taxYearMarkdown(ys fiscal.YearSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tax year %s\n\n", ys.TaxYear)
	b.WriteString("| Quarter | Period | Income | Expenses | Profit | Est. tax |\n")
	b.WriteString("|---|---|---:|---:|---:|---:|\n")
	for _, q := range ys.Quarters {
		label := q.Label
		if q.IsCurrent {
			label += " (current)"
		}
		if !q.HasData {
			fmt.Fprintf(&b, "| %s | %s to %s | - | - | - | - |\n", label, q.Range.Start, q.Range.End)
			continue
		}
		fmt.Fprintf(&b, "| %s | %s to %s | %s | %s | %s | %s |\n",
			label, q.Range.Start, q.Range.End,
			core.FormatGBP(q.Income), core.FormatGBP(q.Expenses),
			core.FormatGBP(q.Profit), core.FormatGBP(q.EstimatedTax))
	}
	fmt.Fprintf(&b, "| **Year to date** | | %s | %s | %s | %s |\n",
		core.FormatGBP(ys.Income), core.FormatGBP(ys.Expenses),
		core.FormatGBP(ys.Profit), core.FormatGBP(ys.EstimatedTax))
	fmt.Fprintf(&b, "\nEstimate at the %s basic rate on year to date profit.\n", fiscal.BasicRate.Shift(2).String()+"%")
	return b.String()
}

func dashboardMarkdown(d services.Dashboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Dashboard, %s\n\n", d.AsOf)
	fmt.Fprintf(&b, "- Active properties: %d\n", d.ActiveProperties)
	fmt.Fprintf(&b, "- Overdue items: %d\n", d.Overdue)
	fmt.Fprintf(&b, "- Due within 30 days: %d\n", d.DueSoon)
	fmt.Fprintf(&b, "- Compliance score: %d%%\n", d.OverallScore)
	fmt.Fprintf(&b, "- Monthly rent roll: %s\n\n", core.FormatGBP(d.MonthlyRent))

	fmt.Fprintf(&b, "## %s %s\n\n", d.TaxYear, fiscal.QuarterLabel(d.Quarter))
	fmt.Fprintf(&b, "| Income | Expenses | Profit | Est. tax |\n")
	fmt.Fprintf(&b, "|---:|---:|---:|---:|\n")
	fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
		core.FormatGBP(d.Current.Income), core.FormatGBP(d.Current.Expenses),
		core.FormatGBP(d.Current.Profit), core.FormatGBP(d.QuarterTax))
	return b.String()
}

// cell escapes pipes so values cannot break a markdown table row.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
