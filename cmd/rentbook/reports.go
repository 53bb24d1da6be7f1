package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"rentbook/internal/fiscal"
	"rentbook/internal/services"
)

type taxCmd struct {
	year string
}

func (*taxCmd) Name() string     { return "tax" }
func (*taxCmd) Synopsis() string { return "show the quarterly tax summary of a tax year" }
func (*taxCmd) Usage() string {
	return `rentbook tax [-y 2024-25]

  Shows income, expenses, profit and the basic rate estimate per quarter
  and year to date. Defaults to the current tax year.
`
}

func (c *taxCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", "", "tax year label, e.g. 2024-25")
}

func (c *taxCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app, svc *services.Services) error {
		year := c.year
		if year == "" {
			year = fiscal.TaxYearOf(a.today)
		}
		summary, err := svc.Report.TaxYear(ctx, year, a.today)
		if err != nil {
			return err
		}
		return a.render(taxYearMarkdown(summary))
	})
}

type dashboardCmd struct{}

func (*dashboardCmd) Name() string     { return "dashboard" }
func (*dashboardCmd) Synopsis() string { return "show the portfolio overview" }
func (*dashboardCmd) Usage() string {
	return `rentbook dashboard

  Shows active properties, overdue and due soon items, the current
  quarter's figures, the monthly rent roll and the overall compliance score.
`
}

func (*dashboardCmd) SetFlags(*flag.FlagSet) {}

func (*dashboardCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app, svc *services.Services) error {
		d, err := svc.Report.Dashboard(ctx, a.today)
		if err != nil {
			return err
		}
		return a.render(dashboardMarkdown(d))
	})
}

type exportCmd struct {
	year   string
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "export a tax year's entries as CSV" }
func (*exportCmd) Usage() string {
	return `rentbook export [-y 2024-25] [-o file.csv]

  Writes the entries of a tax year as CSV, to stdout unless -o is given.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.year, "y", "", "tax year label (defaults to the current one)")
	f.StringVar(&c.output, "o", "", "output file")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app, svc *services.Services) error {
		year := c.year
		if year == "" {
			year = fiscal.TaxYearOf(a.today)
		}
		if c.output == "" {
			_, err := svc.Report.Export(ctx, a.out, year)
			return err
		}

		file, err := os.Create(c.output)
		if err != nil {
			return err
		}
		n, err := svc.Report.Export(ctx, file, year)
		if cerr := file.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %d entries to %s\n", n, c.output)
		return nil
	})
}
