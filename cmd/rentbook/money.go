package main

import (
	"context"
	"flag"
	"strings"

	"github.com/google/subcommands"

	"rentbook/internal/core"
	"rentbook/internal/services"
)

type addEntryCmd struct {
	property    string
	category    string
	amount      string
	date        string
	description string
}

func (*addEntryCmd) Name() string     { return "add-entry" }
func (*addEntryCmd) Synopsis() string { return "record income or an expense" }
func (*addEntryCmd) Usage() string {
	return `rentbook add-entry -c <category> -a <amount> [-p <property-id>] [-d YYYY-MM-DD] [-desc ...]

  Records a money entry. The category decides income or expense; the tax
  year and quarter are derived from the date (default today). Entries
  without -p are portfolio-wide.
`
}

func (c *addEntryCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.property, "p", "", "property ID")
	f.StringVar(&c.category, "c", "", "money category, e.g. rent_income")
	f.StringVar(&c.amount, "a", "", "amount in pounds")
	f.StringVar(&c.date, "d", "", "entry date (defaults to today)")
	f.StringVar(&c.description, "desc", "", "description")
}

func (c *addEntryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.category == "" || c.amount == "" {
		return usageError("-c and -a are required")
	}
	amount, err := core.ParseAmount(c.amount)
	if err != nil {
		return usageError("-a: %v", err)
	}
	return run(ctx, args, func(a *app, svc *services.Services) error {
		date := a.today
		if c.date != "" {
			d, err := core.ParseDate(c.date)
			if err != nil {
				return err
			}
			date = d
		}
		e, err := svc.Money.RecordEntry(ctx, core.MoneyEntry{
			PropertyID:  c.property,
			Category:    core.MoneyCategory(strings.ToLower(c.category)),
			Amount:      amount,
			Date:        date,
			Description: c.description,
		})
		if err != nil {
			return err
		}
		a.printf("Recorded %s %s %s on %s (%s Q%d)\n",
			e.Type, e.Category.Label(), core.FormatGBP(e.Amount), e.Date, e.TaxYear, e.Quarter)
		return nil
	})
}

type addTenancyCmd struct {
	property  string
	tenant    string
	rent      string
	frequency string
	inactive  bool
}

func (*addTenancyCmd) Name() string     { return "add-tenancy" }
func (*addTenancyCmd) Synopsis() string { return "record a tenancy for the rent roll" }
func (*addTenancyCmd) Usage() string {
	return `rentbook add-tenancy -p <property-id> -tenant <name> -rent <amount> [-f monthly|weekly] [-inactive]
`
}

func (c *addTenancyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.property, "p", "", "property ID")
	f.StringVar(&c.tenant, "tenant", "", "tenant name")
	f.StringVar(&c.rent, "rent", "", "rent amount in pounds")
	f.StringVar(&c.frequency, "f", string(core.Monthly), "rent frequency")
	f.BoolVar(&c.inactive, "inactive", false, "record the tenancy as ended")
}

func (c *addTenancyCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.property == "" || c.tenant == "" || c.rent == "" {
		return usageError("-p, -tenant and -rent are required")
	}
	rent, err := core.ParseAmount(c.rent)
	if err != nil {
		return usageError("-rent: %v", err)
	}
	return run(ctx, args, func(a *app, svc *services.Services) error {
		t, err := svc.Money.AddTenancy(ctx, core.Tenancy{
			PropertyID: c.property,
			TenantName: c.tenant,
			RentAmount: rent,
			Frequency:  core.RentFrequency(c.frequency),
			Active:     !c.inactive,
		})
		if err != nil {
			return err
		}
		a.printf("Added tenancy for %s: %s %s (%s a month)\n",
			t.TenantName, core.FormatGBP(t.RentAmount), t.Frequency, core.FormatGBP(t.MonthlyRent()))
		return nil
	})
}
