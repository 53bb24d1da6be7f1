// Command rentbook records properties, certificates and money entries and
// prints compliance and tax reports.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"

	"rentbook/internal/backend"
	"rentbook/internal/cli"
	"rentbook/internal/config"
	"rentbook/internal/log"
	"rentbook/internal/services"
)

var plain = flag.Bool("plain", false, "print reports as raw markdown")

// register adds every rentbook command to c.
func register(c *subcommands.Commander) {
	c.Register(c.HelpCommand(), "")
	c.Register(c.FlagsCommand(), "")
	c.Register(c.CommandsCommand(), "")

	c.Register(&addPropertyCmd{}, "compliance")
	c.Register(&addCertificateCmd{}, "compliance")
	c.Register(&setEnabledCmd{}, "compliance")
	c.Register(&propertiesCmd{}, "compliance")
	c.Register(&scoreCmd{}, "compliance")
	c.Register(&refreshCmd{}, "compliance")

	c.Register(&addEntryCmd{}, "money")
	c.Register(&addTenancyCmd{}, "money")

	c.Register(&taxCmd{}, "reports")
	c.Register(&dashboardCmd{}, "reports")
	c.Register(&exportCmd{}, "reports")
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cfg := config.Load()

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	register(commander)
	flag.Parse()

	ctx, _ := log.WithRun(log.NewContext(context.Background(), logger))
	a := &app{
		out:   os.Stdout,
		today: cli.Today(cfg),
		plain: *plain,
		open: func(ctx context.Context) (*services.Services, error) {
			return openServices(ctx, logger, cfg)
		},
	}

	status := commander.Execute(ctx, a)
	if err := a.close(); err != nil {
		logger.Error("Failed to close backend", log.FieldError, err)
	}
	os.Exit(int(status))
}

// openServices validates the configuration and opens the backend. It runs
// only for commands that touch records, so help works with a broken env.
func openServices(ctx context.Context, logger *log.Logger, cfg *config.Config) (*services.Services, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).Open(ctx, bcfg)
	if err != nil {
		return nil, err
	}
	return services.New(res.Store, res.Publisher), nil
}
