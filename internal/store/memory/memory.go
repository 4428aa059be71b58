package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/store"
)

// Ensure interface conformance
var (
	_ store.TransactionStore       = (*Store)(nil)
	_ store.FixedExpenseRepository = (*Store)(nil)
	_ store.ErrorReportWriter      = (*Store)(nil)
)

// Store keeps everything for the lifetime of the process.
type Store struct {
	mu       sync.RWMutex
	items    []core.Transaction
	revision uint64
	fixed    []core.FixedExpense
	reports  []core.ErrorReport
}

func New() *Store {
	return &Store{}
}

// NewSeeded returns a store pre-filled with txs in order.
func NewSeeded(txs []core.Transaction) *Store {
	s := New()
	for _, t := range txs {
		s.items = append(s.items, t)
		s.revision++
	}
	return s
}

// Append stores the transaction as-is.
func (s *Store) Append(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, t)
	s.revision++
	return nil
}

func (s *Store) All(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.Transaction(nil), s.items...), nil
}

func (s *Store) Revision(_ context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision, nil
}

func (s *Store) CreateFixedExpense(_ context.Context, fe core.FixedExpense) (int64, error) {
	if err := fe.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fe.ID = int64(len(s.fixed) + 1)
	s.fixed = append(s.fixed, fe)
	return fe.ID, nil
}

func (s *Store) ListFixedExpenses(_ context.Context) ([]core.FixedExpense, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.FixedExpense(nil), s.fixed...), nil
}

func (s *Store) ActiveFixedExpenses(_ context.Context, now time.Time) ([]core.FixedExpense, error) {
	today := core.DateOf(now)
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []core.FixedExpense
	for _, fe := range s.fixed {
		if fe.ActiveOn(today) {
			out = append(out, fe)
		}
	}
	return out, nil
}

func (s *Store) MarkExecuted(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < 1 || int(id) > len(s.fixed) {
		return fmt.Errorf("fixed expense %d not found", id)
	}
	s.fixed[id-1].LastExecution = at
	return nil
}

// SaveErrorReport stores the report and returns its sequence number.
func (s *Store) SaveErrorReport(_ context.Context, r core.ErrorReport) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = int64(len(s.reports) + 1)
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	s.reports = append(s.reports, r)
	return r.ID, nil
}

// ErrorReports returns the stored reports in arrival order.
func (s *Store) ErrorReports() []core.ErrorReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]core.ErrorReport(nil), s.reports...)
}
