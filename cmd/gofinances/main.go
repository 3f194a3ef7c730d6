package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	_ "time/tzdata"

	"golang.org/x/sync/errgroup"

	"gofinances/internal/amqp"
	"gofinances/internal/cache"
	"gofinances/internal/cli"
	"gofinances/internal/core"
	apphttp "gofinances/internal/http"
	applog "gofinances/internal/log"
	"gofinances/internal/repository"
	"gofinances/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	backendResult, err := cli.OpenBackend(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := backendResult.Cleanup(); err != nil {
			logger.Error("Failed to close backend", "error", err)
		}
	}()

	repo := repository.NewTransactionRepository(backendResult.Store, cfg.StoreNamespace)
	txs := cache.NewTransactions(repo, 1024, 30*time.Second)
	cacheManager := cache.NewManager(logger.Logger)
	cacheManager.Register(txs.Cleaner())
	cacheManager.StartCleanup(5 * time.Minute)
	defer cacheManager.Stop()

	aggCfg := core.AggregationConfig{
		Catalog:              core.DefaultCatalog(),
		Location:             cfg.Location(),
		IncludeUncategorized: cfg.IncludeUncategorized,
	}

	checks := map[string]apphttp.Pinger{"store": backendResult.Store}

	// A nil *amqp.Client must not reach the service as a non-nil interface.
	var publisher services.TransactionPublisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer client.Close()
		publisher = client
		checks["amqp"] = client
		logger.Info("AMQP publisher ready", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, transaction events will not be published")
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Deps{
		Summary:           services.NewSummaryService(txs, aggCfg),
		Register:          services.NewRegisterService(txs, publisher, aggCfg.Catalog),
		Snapshots:         repo,
		Checks:            checks,
		Logger:            logger,
		Location:          aggCfg.Location,
		RequestsPerMinute: cfg.RateLimitPerMinute,
	})
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting gofinances server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
