package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"gagyebu/internal/cache"
	"gagyebu/internal/cli"
	"gagyebu/internal/core"
	apphttp "gagyebu/internal/http"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := cli.SignalContext()
	defer stop()

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	formatter, err := core.NewAmountFormatter(cfg.DisplayLocale)
	if err != nil {
		logger.Error("Invalid display locale", applog.FieldError, err)
		os.Exit(1)
	}

	ledger := cli.NewLedger(cfg, res, logger)
	deps := apphttp.Dependencies{
		Ledger:        ledger.Service,
		FixedExpenses: res.Backend,
		Reports:       services.NewReportService(res.Backend),
		Formatter:     formatter,
		Logger:        logger,
	}
	if pinger, ok := res.Backend.(interface{ Ping(context.Context) error }); ok {
		deps.Ready = pinger.Ping
	}
	srv := apphttp.NewServer(":"+cfg.Port, deps)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting gagyebu server",
			"port", cfg.Port,
			"backend", cfg.DataBackend,
			"queued", ledger.Service.Queued(),
			applog.FieldOperation, applog.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		logger.Info("Shutting down server", applog.FieldOperation, applog.OpShutdown)
		return srv.Shutdown(shutdownCtx)
	})

	if res.Queue != nil {
		g.Go(func() error {
			return ignoreCanceled(res.Queue.ConsumeEntries(gctx, ledger.Service.HandleEntryMessage))
		})
	}

	if cfg.RunFixedExpenses {
		processor := services.NewFixedExpenseProcessor(res.Backend, ledger.Service.Entries())
		g.Go(func() error {
			return processor.Run(gctx, cfg.FixedExpenseInterval, nil)
		})
	}

	if cfg.CacheTTL > 0 {
		manager := cache.NewManager(ledger.Views)
		g.Go(func() error {
			return manager.Run(gctx, cfg.CacheTTL)
		})
	}

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
