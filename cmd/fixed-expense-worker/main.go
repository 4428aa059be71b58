package main

import (
	"os"

	"gagyebu/internal/cli"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

// fixed-expense-worker records due fixed expenses against a shared SQLite
// ledger. Run the server with RUN_FIXED_EXPENSES=false alongside it.
func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(os.Getenv("LOG_LEVEL"), applog.ComponentFixedExpense)
	logger.Info("Starting fixed-expense-worker")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.DataBackend != "sqlite" {
		logger.Error("fixed-expense-worker needs a shared ledger, set DATA_BACKEND=sqlite",
			"backend", cfg.DataBackend)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext()
	defer stop()

	res, err := cli.OpenBackend(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer res.Cleanup()

	ledger := cli.NewLedger(cfg, res, logger)
	if ledger.Service.Queued() {
		logger.Info("Fixed expenses are published to the entry queue", "queue", cfg.AMQPQueue)
	} else {
		logger.Info("AMQP disabled, fixed expenses are written directly", "sqlite_db", cfg.SQLiteDBPath)
	}

	processor := services.NewFixedExpenseProcessor(res.Backend, ledger.Service.Entries())
	logger.Info("Fixed expense processor configured", "interval", cfg.FixedExpenseInterval)

	if err := processor.Run(ctx, cfg.FixedExpenseInterval, nil); err != nil {
		logger.Error("Fixed expense processor stopped", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("fixed-expense-worker shutdown complete", applog.FieldOperation, applog.OpShutdown)
}
