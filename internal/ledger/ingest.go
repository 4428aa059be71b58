package ledger

import (
	"context"
	"fmt"
	"strings"

	"gagyebu/internal/core"
	"gagyebu/internal/store"
)

// Ingestor turns entry-form submissions into transactions and appends them.
type Ingestor struct {
	store  store.TransactionStore
	policy core.AmountPolicy
}

func NewIngestor(s store.TransactionStore, policy core.AmountPolicy) *Ingestor {
	if policy == "" {
		policy = core.AmountPermissive
	}
	return &Ingestor{store: s, policy: policy}
}

// Policy returns the amount policy in use.
func (in *Ingestor) Policy() core.AmountPolicy {
	return in.policy
}

// Normalize converts a submission into a canonical transaction without
// storing it.
func (in *Ingestor) Normalize(sub core.EntrySubmission) (core.Transaction, error) {
	if sub.Date.IsZero() {
		return core.Transaction{}, fmt.Errorf("%w: missing entry date", core.ErrInvalidDate)
	}

	typ, err := core.ParseEntryType(sub.Type)
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(sub.Amount, in.policy)
	if err != nil {
		return core.Transaction{}, err
	}
	cat, err := core.ParseCategory(sub.Category)
	if err != nil {
		return core.Transaction{}, err
	}

	t := core.Transaction{
		Date:           core.DateOf(sub.Date),
		Memo:           sub.Memo,
		Category:       cat,
		PaymentMethod:  strings.TrimSpace(sub.Payment),
		TransferTarget: strings.TrimSpace(sub.Transfer),
	}
	switch typ {
	case core.EntryIncome:
		t.Income = amount
		t.Kind = core.KindIncome
	case core.EntryExpense:
		t.Expense = amount
		t.Kind = core.KindExpense
	}
	if t.TransferTarget != "" {
		t.Kind = core.KindTransfer
	}

	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}

// Ingest normalizes the submission and appends the result to the store.
func (in *Ingestor) Ingest(ctx context.Context, sub core.EntrySubmission) (core.Transaction, error) {
	t, err := in.Normalize(sub)
	if err != nil {
		return core.Transaction{}, err
	}
	if err := in.store.Append(ctx, t); err != nil {
		return core.Transaction{}, fmt.Errorf("append transaction: %w", err)
	}
	return t, nil
}
