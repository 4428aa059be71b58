package store

import (
	"context"
	"time"

	"gagyebu/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionStore is the append-only, insertion-ordered transaction log.
	// It performs no validation.
	TransactionStore interface {
		Append(ctx context.Context, t core.Transaction) error
		// All returns a copy of every transaction in insertion order.
		All(ctx context.Context) ([]core.Transaction, error)
		// Revision advances by one on every append. Derived views are keyed
		// by it so they are never served for an older snapshot.
		Revision(ctx context.Context) (uint64, error)
	}

	// FixedExpenseRepository keeps recurring cost templates.
	FixedExpenseRepository interface {
		CreateFixedExpense(ctx context.Context, fe core.FixedExpense) (int64, error)
		ListFixedExpenses(ctx context.Context) ([]core.FixedExpense, error)
		// ActiveFixedExpenses returns templates running on the date of now.
		ActiveFixedExpenses(ctx context.Context, now time.Time) ([]core.FixedExpense, error)
		MarkExecuted(ctx context.Context, id int64, at time.Time) error
	}

	// ErrorReportWriter stores reports sent from the error-report form.
	ErrorReportWriter interface {
		SaveErrorReport(ctx context.Context, r core.ErrorReport) (int64, error)
	}
)
