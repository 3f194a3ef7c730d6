package main

import (
	"context"
	"errors"
	"os"

	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"gofinances/internal/amqp"
	"gofinances/internal/cli"
	"gofinances/internal/core"
	applog "gofinances/internal/log"
	"gofinances/internal/repository"
	"gofinances/internal/sheets"
	gsheet "gofinances/internal/sheets/google"
	"gofinances/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentWorker)

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required by the worker")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendResult, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer backendResult.Cleanup()

	repo := repository.NewTransactionRepository(backendResult.Store, cfg.StoreNamespace)
	aggCfg := core.AggregationConfig{
		Catalog:              core.DefaultCatalog(),
		Location:             cfg.Location(),
		IncludeUncategorized: cfg.IncludeUncategorized,
	}

	var exporter sheets.TransactionExporter
	if cfg.GoogleSpreadsheetID != "" {
		e, err := gsheet.NewExporter(ctx, gsheet.Config{
			SpreadsheetID:      cfg.GoogleSpreadsheetID,
			SheetName:          cfg.GoogleSheetName,
			ServiceAccountFile: cfg.GoogleServiceAccountFile,
			ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
			Catalog:            aggCfg.Catalog,
			Location:           aggCfg.Location,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets exporter", "error", err)
			os.Exit(1)
		}
		exporter = e
	} else {
		logger.Info("Google Sheets export disabled, no GOOGLE_SPREADSHEET_ID provided")
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewSnapshotWorker(repo, exporter, aggCfg)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Consuming transaction events", "queue", cfg.AMQPQueue)
		return client.ConsumeTransactionCreated(gctx, w.HandleTransactionCreated)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
