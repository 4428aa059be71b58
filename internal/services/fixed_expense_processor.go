package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/store"
)

// EntrySubmitter stores one entry submission.
type EntrySubmitter interface {
	Submit(ctx context.Context, sub core.EntrySubmission) (core.Transaction, error)
}

// FixedExpenseProcessor turns due fixed expenses into expense transactions.
type FixedExpenseProcessor struct {
	repo    store.FixedExpenseRepository
	entries EntrySubmitter
}

func NewFixedExpenseProcessor(repo store.FixedExpenseRepository, entries EntrySubmitter) *FixedExpenseProcessor {
	return &FixedExpenseProcessor{repo: repo, entries: entries}
}

// ProcessDue records every fixed expense due at now and returns how many
// were recorded. A failing template is logged and skipped.
func (p *FixedExpenseProcessor) ProcessDue(ctx context.Context, now time.Time) (int, error) {
	if p.repo == nil || p.entries == nil {
		return 0, fmt.Errorf("processor not properly initialized")
	}

	active, err := p.repo.ActiveFixedExpenses(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list active fixed expenses: %w", err)
	}

	processed := 0
	for _, fe := range active {
		checker, err := GetDuenessChecker(fe.Every)
		if err != nil {
			slog.ErrorContext(ctx, "Skipping fixed expense", "fixed_expense_id", fe.ID, "error", err)
			continue
		}
		if !checker.IsDue(fe.LastExecution, now, fe.StartDate) {
			continue
		}

		t, err := p.entries.Submit(ctx, fe.Submission(now))
		if err != nil {
			slog.ErrorContext(ctx, "Failed to record fixed expense",
				"fixed_expense_id", fe.ID,
				"error", err)
			continue
		}

		if err := p.repo.MarkExecuted(ctx, fe.ID, now); err != nil {
			// The entry is stored; the next run would record it again.
			slog.ErrorContext(ctx, "Failed to update last execution",
				"fixed_expense_id", fe.ID,
				"error", err)
		}

		processed++
		slog.InfoContext(ctx, "Recorded fixed expense",
			"fixed_expense_id", fe.ID,
			"date", t.Date.String(),
			"expense", t.Expense.Int64(),
			"cycle", fe.Every)
	}

	if processed > 0 {
		slog.InfoContext(ctx, "Fixed expense run complete",
			"processed", processed,
			"checked", len(active))
	}
	return processed, nil
}

// Run processes due fixed expenses immediately and then every interval
// until ctx is done.
func (p *FixedExpenseProcessor) Run(ctx context.Context, interval time.Duration, clock func() time.Time) error {
	if clock == nil {
		clock = time.Now
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := p.ProcessDue(ctx, clock()); err != nil {
			slog.ErrorContext(ctx, "Fixed expense run failed", "error", err)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// CreateFixedExpense validates and stores a new template.
func CreateFixedExpense(ctx context.Context, repo store.FixedExpenseRepository, fe core.FixedExpense) (core.FixedExpense, error) {
	if err := fe.Validate(); err != nil {
		return core.FixedExpense{}, err
	}
	id, err := repo.CreateFixedExpense(ctx, fe)
	if err != nil {
		return core.FixedExpense{}, fmt.Errorf("create fixed expense: %w", err)
	}
	fe.ID = id
	return fe, nil
}
