// Package cli provides common initialization shared by cmd/gagyebu and
// cmd/fixed-expense-worker.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"gagyebu/internal/backend"
	"gagyebu/internal/cache"
	"gagyebu/internal/config"
	applog "gagyebu/internal/log"
	"gagyebu/internal/services"
)

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger from LOG_LEVEL and makes it the
// slog default. An unknown level falls back to info; Validate reports it.
func SetupLogger(level, component string) *applog.Logger {
	cfg := applog.DefaultConfig()
	cfg.Component = component
	if l, err := applog.ParseLevel(level); err == nil {
		cfg.Level = l
	}
	logger := applog.New(cfg)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *applog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenBackend creates the configured storage backend and optional queue.
func OpenBackend(ctx context.Context, logger *applog.Logger, cfg *config.Config) (*backend.BackendResult, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}
	return res, nil
}

// Ledger wires the ledger service and its view cache over an opened backend.
type Ledger struct {
	Service *services.LedgerService
	Views   *cache.LRUCache[services.ViewKey, any]
}

// NewLedger builds the ledger service; entries go through res.Queue when it is set.
func NewLedger(cfg *config.Config, res *backend.BackendResult, logger *applog.Logger) Ledger {
	views := cache.NewLRUCache[services.ViewKey, any](cfg.CacheSize, cfg.CacheTTL)
	opts := services.LedgerOptions{
		Policy:       cfg.Policy(),
		FirstWeekday: cfg.Weekday(),
		Views:        views,
		Logger:       logger,
	}
	if res.Queue != nil {
		opts.Queue = res.Queue
	}
	return Ledger{Service: services.NewLedgerService(res.Backend, opts), Views: views}
}

// SignalContext returns a context cancelled on SIGINT or SIGTERM.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
