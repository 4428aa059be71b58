package backend

import (
	"context"

	"gagyebu/internal/amqp"
	"gagyebu/internal/store"
)

// Backend bundles every storage port the application needs.
type Backend interface {
	store.TransactionStore
	store.FixedExpenseRepository
	store.ErrorReportWriter
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance, the optional entry queue
// and a cleanup function releasing both.
type BackendResult struct {
	Backend Backend
	// Queue is nil when no AMQP URL is configured or the broker was unreachable.
	Queue   *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	Type BackendType

	// SQLite specific
	SQLiteDBPath string

	// Seed the demo month into an empty ledger
	SeedDemo bool

	// Optional entry queue
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
