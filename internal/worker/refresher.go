package worker

import (
	"context"
	"fmt"
	"time"

	"rentbook/internal/core"
	"rentbook/internal/log"
	"rentbook/internal/services"
)

// StatusRefresher is implemented by services.ComplianceService.
type StatusRefresher interface {
	RefreshStatuses(ctx context.Context, now core.Date) (services.RefreshResult, error)
}

// ComplianceRefresher recomputes stored compliance statuses on an interval
// so that alerts go out when a certificate crosses into due soon or overdue.
type ComplianceRefresher struct {
	refresher StatusRefresher
	today     func() core.Date
	interval  time.Duration
}

// NewComplianceRefresher builds a refresher. today supplies the reference day
// for each pass, normally the calendar day in the configured timezone.
func NewComplianceRefresher(refresher StatusRefresher, today func() core.Date, interval time.Duration) *ComplianceRefresher {
	return &ComplianceRefresher{
		refresher: refresher,
		today:     today,
		interval:  interval,
	}
}

// RunOnce performs a single refresh pass against today.
func (r *ComplianceRefresher) RunOnce(ctx context.Context) (services.RefreshResult, error) {
	ctx, _ = log.WithRun(ctx)
	now := r.today()
	res, err := r.refresher.RefreshStatuses(ctx, now)
	l := log.FromContext(ctx).WithComponent(log.ComponentWorker)
	if err != nil {
		l.ErrorContext(ctx, "Compliance refresh failed", log.FieldError, err, log.FieldDate, now.String())
		return res, err
	}
	l.DebugContext(ctx, "Compliance refresh pass finished", "changed", res.Changed)
	return res, nil
}

// Run refreshes once at startup and then on every tick until ctx is done.
// Failed passes are logged and retried on the next tick.
func (r *ComplianceRefresher) Run(ctx context.Context) error {
	return Every(ctx, r.interval, true, func(ctx context.Context) {
		_, _ = r.RunOnce(ctx)
	})
}

// Every calls fn every interval until ctx is cancelled, and once up front when
// immediate is set. It returns nil on cancellation.
func Every(ctx context.Context, interval time.Duration, immediate bool, fn func(context.Context)) error {
	if interval <= 0 {
		return fmt.Errorf("invalid interval %s", interval)
	}
	if immediate {
		fn(ctx)
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			fn(ctx)
		}
	}
}
