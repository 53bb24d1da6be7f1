// Command rentbook-worker mirrors money entries to the Google Sheets ledger
// and keeps stored compliance statuses current.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"rentbook/internal/backend"
	"rentbook/internal/cli"
	"rentbook/internal/core"
	"rentbook/internal/log"
	"rentbook/internal/services"
	"rentbook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL")).WithComponent(log.ComponentWorker)
	logger.Info("Starting rentbook-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	res, bcfg := cli.InitBackend(context.Background(), logger, cfg)
	cleanup := func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}
	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, cleanup)
	ctx = log.NewContext(ctx, logger)

	ledger, err := backend.NewFactory(logger).OpenLedger(ctx, bcfg)
	if err != nil {
		logger.Error("Failed to initialize ledger", log.FieldError, err)
		cleanup()
		os.Exit(1)
	}

	svc := services.New(res.Store, res.Publisher)
	refresher := worker.NewComplianceRefresher(svc.Compliance, func() core.Date {
		return cli.Today(cfg)
	}, cfg.ComplianceRefreshInterval)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return refresher.Run(gctx) })

	if ledger != nil {
		w := worker.NewLedgerWorker(res.Store, ledger, cfg.SyncBatchSize)

		logger.Info("Performing startup sync check...")
		if n, err := w.StartupSyncCheck(ctx); err != nil {
			logger.Error("Failed startup sync check", log.FieldError, err)
		} else {
			logger.Info("Startup sync check finished", log.FieldCount, n)
		}

		g.Go(func() error { return w.RunPendingSync(gctx, cfg.SyncInterval) })
		if res.AMQP != nil {
			g.Go(func() error { return res.AMQP.ConsumeEntrySync(gctx, w.HandleSyncMessage) })
		} else {
			logger.Info("Skipping AMQP message consumption - no broker available")
		}
	} else {
		logger.Info("Skipping ledger sync - no spreadsheet configured")
	}

	err = g.Wait()
	if ctx.Err() != nil {
		// the shutdown handler owns cleanup once a signal arrived
		<-done
		return
	}
	cleanup()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped", log.FieldError, err)
		os.Exit(1)
	}
}
