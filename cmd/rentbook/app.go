package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"

	"rentbook/internal/core"
	"rentbook/internal/services"
)

// app is the state shared by every command of one invocation. today is
// sampled once so that every figure of a report refers to the same day.
type app struct {
	out   io.Writer
	today core.Date
	plain bool

	open func(ctx context.Context) (*services.Services, error)
	svc  *services.Services
}

func appFrom(args []interface{}) *app {
	if len(args) == 0 {
		return nil
	}
	a, _ := args[0].(*app)
	return a
}

func (a *app) services(ctx context.Context) (*services.Services, error) {
	if a.svc == nil {
		svc, err := a.open(ctx)
		if err != nil {
			return nil, err
		}
		a.svc = svc
	}
	return a.svc, nil
}

func (a *app) close() error {
	if a.svc == nil {
		return nil
	}
	return a.svc.Close()
}

// render prints a markdown report, styled for the terminal unless plain.
func (a *app) render(md string) error {
	if a.plain {
		_, err := io.WriteString(a.out, md)
		return err
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return err
	}
	out, err := r.Render(md)
	if err != nil {
		return err
	}
	_, err = io.WriteString(a.out, out)
	return err
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

// run resolves the app and services and reports errors the way every
// command does.
func run(ctx context.Context, args []interface{}, fn func(a *app, svc *services.Services) error) subcommands.ExitStatus {
	a := appFrom(args)
	if a == nil {
		fmt.Fprintln(os.Stderr, "Error: command invoked without application context")
		return subcommands.ExitFailure
	}
	svc, err := a.services(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := fn(a, svc); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func usageError(format string, args ...any) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	return subcommands.ExitUsageError
}

// parseKinds splits a comma separated list of compliance kinds.
func parseKinds(s string) []core.ComplianceType {
	var out []core.ComplianceType
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, core.ComplianceType(part))
		}
	}
	return out
}

func parseOptionalDate(s string) (*core.Date, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
