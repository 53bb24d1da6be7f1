package main

import (
	"context"
	"flag"

	"github.com/google/subcommands"

	"rentbook/internal/compliance"
	"rentbook/internal/core"
	"rentbook/internal/services"
)

type addPropertyCmd struct {
	nickname string
	ptype    string
	enabled  string
	inactive bool
}

func (*addPropertyCmd) Name() string     { return "add-property" }
func (*addPropertyCmd) Synopsis() string { return "add a property to the portfolio" }
func (*addPropertyCmd) Usage() string {
	return `rentbook add-property -n <nickname> -t <type> [-enabled gas_safety,eicr] [-inactive]

  Adds a property. Types: house, flat, hmo, room, office, retail,
  restaurant, warehouse, mixed_use. -enabled overrides the compliance
  items tracked for the property's category.
`
}

func (c *addPropertyCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.nickname, "n", "", "property nickname")
	f.StringVar(&c.ptype, "t", string(core.House), "property type")
	f.StringVar(&c.enabled, "enabled", "", "comma separated compliance kinds to track")
	f.BoolVar(&c.inactive, "inactive", false, "record the property as inactive")
}

func (c *addPropertyCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.nickname == "" {
		return usageError("-n is required")
	}
	return run(ctx, args, func(a *app, svc *services.Services) error {
		p, err := svc.Compliance.AddProperty(ctx, core.Property{
			Nickname:               c.nickname,
			Type:                   core.PropertyType(c.ptype),
			EnabledComplianceTypes: parseKinds(c.enabled),
			Active:                 !c.inactive,
		})
		if err != nil {
			return err
		}
		a.printf("Added %s %q (%s)\n", p.Type.Label(), p.Nickname, p.ID)
		return nil
	})
}

type addCertificateCmd struct {
	property  string
	ctype     string
	due       string
	completed string
	reminder  int
	notes     string
}

func (*addCertificateCmd) Name() string     { return "add-certificate" }
func (*addCertificateCmd) Synopsis() string { return "record a compliance certificate" }
func (*addCertificateCmd) Usage() string {
	return `rentbook add-certificate -p <property-id> -t <kind> [-due YYYY-MM-DD] [-completed YYYY-MM-DD] [-reminder 30] [-notes ...]

  Records a compliance item. Its status is derived from the due date as of today.
`
}

func (c *addCertificateCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.property, "p", "", "property ID")
	f.StringVar(&c.ctype, "t", "", "compliance kind, e.g. gas_safety")
	f.StringVar(&c.due, "due", "", "due or expiry date")
	f.StringVar(&c.completed, "completed", "", "date last completed")
	f.IntVar(&c.reminder, "reminder", 30, "reminder days, kept for the record")
	f.StringVar(&c.notes, "notes", "", "free text notes")
}

func (c *addCertificateCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.property == "" || c.ctype == "" {
		return usageError("-p and -t are required")
	}
	due, err := parseOptionalDate(c.due)
	if err != nil {
		return usageError("-due: %v", err)
	}
	completed, err := parseOptionalDate(c.completed)
	if err != nil {
		return usageError("-completed: %v", err)
	}
	return run(ctx, args, func(a *app, svc *services.Services) error {
		r, err := svc.Compliance.RecordCompliance(ctx, core.ComplianceRecord{
			PropertyID:    c.property,
			Type:          core.ComplianceType(c.ctype),
			DueDate:       due,
			LastCompleted: completed,
			ReminderDays:  c.reminder,
			Notes:         c.notes,
		}, a.today)
		if err != nil {
			return err
		}
		a.printf("Recorded %s: %s (%s)\n", r.Type.Label(), r.Status.Label(), r.ID)
		return nil
	})
}

type setEnabledCmd struct {
	property string
	types    string
}

func (*setEnabledCmd) Name() string     { return "set-enabled" }
func (*setEnabledCmd) Synopsis() string { return "choose which compliance items a property tracks" }
func (*setEnabledCmd) Usage() string {
	return `rentbook set-enabled -p <property-id> [-types gas_safety,eicr,epc]

  Replaces the tracked compliance items. An empty list restores the
  default items of the property's category.
`
}

func (c *setEnabledCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.property, "p", "", "property ID")
	f.StringVar(&c.types, "types", "", "comma separated compliance kinds")
}

func (c *setEnabledCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	if c.property == "" {
		return usageError("-p is required")
	}
	return run(ctx, args, func(a *app, svc *services.Services) error {
		p, err := svc.Compliance.SetEnabledTypes(ctx, c.property, parseKinds(c.types))
		if err != nil {
			return err
		}
		if len(p.EnabledComplianceTypes) == 0 {
			a.printf("%s now tracks the %s defaults\n", p.Nickname, compliance.CategoryOf(p.Type))
			return nil
		}
		a.printf("%s now tracks %d items\n", p.Nickname, len(p.EnabledComplianceTypes))
		return nil
	})
}

type propertiesCmd struct{}

func (*propertiesCmd) Name() string     { return "properties" }
func (*propertiesCmd) Synopsis() string { return "list properties" }
func (*propertiesCmd) Usage() string {
	return `rentbook properties

  Lists every property with its ID, type and category.
`
}

func (*propertiesCmd) SetFlags(*flag.FlagSet) {}

func (*propertiesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app, svc *services.Services) error {
		properties, err := svc.Compliance.Properties(ctx)
		if err != nil {
			return err
		}
		return a.render(propertiesMarkdown(properties))
	})
}

type scoreCmd struct {
	property string
	full     bool
}

func (*scoreCmd) Name() string     { return "score" }
func (*scoreCmd) Synopsis() string { return "show compliance scores" }
func (*scoreCmd) Usage() string {
	return `rentbook score [-p <property-id>] [-full-catalog]

  Without -p, scores every active property, riskiest first, with the
  overall portfolio score. With -p, shows the property's items in detail.
  -full-catalog weights scores against every known compliance kind.
`
}

func (c *scoreCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.property, "p", "", "property ID")
	f.BoolVar(&c.full, "full-catalog", false, "score against the full compliance catalog")
}

func (c *scoreCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app, svc *services.Services) error {
		if c.full {
			svc.Compliance.Denominator = compliance.FullCatalog
		}
		if c.property != "" {
			rep, err := svc.Compliance.PropertyReport(ctx, c.property, a.today)
			if err != nil {
				return err
			}
			return a.render(propertyMarkdown(rep, a.today))
		}
		rep, err := svc.Compliance.Portfolio(ctx, a.today)
		if err != nil {
			return err
		}
		return a.render(portfolioMarkdown(rep))
	})
}

type refreshCmd struct{}

func (*refreshCmd) Name() string     { return "refresh" }
func (*refreshCmd) Synopsis() string { return "recompute stored compliance statuses" }
func (*refreshCmd) Usage() string {
	return `rentbook refresh

  Recomputes every stored status as of today and publishes an alert for
  items that became due soon or overdue.
`
}

func (*refreshCmd) SetFlags(*flag.FlagSet) {}

func (*refreshCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	return run(ctx, args, func(a *app, svc *services.Services) error {
		res, err := svc.Compliance.RefreshStatuses(ctx, a.today)
		if err != nil {
			return err
		}
		a.printf("Checked %d records as of %s: %d changed, %d alerts sent\n", res.Checked, a.today, res.Changed, res.Alerts)
		return nil
	})
}
