package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"gagyebu/internal/amqp"
	"gagyebu/internal/cache"
	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
	applog "gagyebu/internal/log"
	"gagyebu/internal/store"
)

// ErrNoQueue is returned by Enqueue when no durable queue is configured.
var ErrNoQueue = errors.New("entry queue not configured")

// EntryPublisher hands submissions to the durable single-writer queue.
type EntryPublisher interface {
	PublishEntry(ctx context.Context, msg *amqp.EntryMessage) error
}

// ViewKey identifies one derived view of one store revision.
type ViewKey struct {
	View     string
	Revision uint64
	Year     int
	Month    int
	Day      int
	Today    core.Date
}

// LedgerOptions configures a LedgerService. Zero values are usable.
type LedgerOptions struct {
	Policy       core.AmountPolicy
	FirstWeekday time.Weekday
	Views        *cache.LRUCache[ViewKey, any]
	Queue        EntryPublisher
	Logger       *applog.Logger
}

// LedgerService is the read and write API over the transaction store.
// Writes are serialized; reads are recomputed from the current snapshot
// unless a view for the same revision is cached.
type LedgerService struct {
	store        store.TransactionStore
	ingestor     *ledger.Ingestor
	firstWeekday time.Weekday
	views        *cache.LRUCache[ViewKey, any]
	queue        EntryPublisher
	logger       *applog.StructuredLogger

	mu sync.Mutex
}

func NewLedgerService(s store.TransactionStore, opts LedgerOptions) *LedgerService {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &LedgerService{
		store:        s,
		ingestor:     ledger.NewIngestor(s, opts.Policy),
		firstWeekday: opts.FirstWeekday,
		views:        opts.Views,
		queue:        opts.Queue,
		logger:       applog.NewStructuredLogger(logger),
	}
}

// Queued reports whether submissions go through the durable queue.
func (s *LedgerService) Queued() bool {
	return s.queue != nil
}

// ViewStats reports the derived view cache counters.
func (s *LedgerService) ViewStats() cache.Stats {
	if s.views == nil {
		return cache.Stats{}
	}
	return s.views.Stats()
}

// view returns the cached value for key or computes it from a fresh
// snapshot. A value is cached only if no append happened while it was built.
func view[T any](ctx context.Context, s *LedgerService, key ViewKey, build func([]core.Transaction) T) (T, error) {
	var zero T
	rev, err := s.store.Revision(ctx)
	if err != nil {
		return zero, fmt.Errorf("read store revision: %w", err)
	}
	key.Revision = rev
	if s.views != nil {
		if v, ok := s.views.Get(key); ok {
			if t, ok := v.(T); ok {
				return t, nil
			}
		}
	}

	txs, err := s.store.All(ctx)
	if err != nil {
		return zero, fmt.Errorf("read transactions: %w", err)
	}
	out := build(txs)

	if s.views != nil {
		if after, err := s.store.Revision(ctx); err == nil && after == rev {
			s.views.Set(key, out)
		}
	}
	return out, nil
}

// CalendarGrid returns the month grid for the selection.
func (s *LedgerService) CalendarGrid(ctx context.Context, sel core.Selection, today core.Date) ([]core.CalendarCell, error) {
	if err := validateSelection(sel); err != nil {
		return nil, err
	}
	key := ViewKey{View: "calendar", Year: sel.Year, Month: sel.Month, Day: sel.Day, Today: today}
	cells, err := view(ctx, s, key, func(txs []core.Transaction) []core.CalendarCell {
		return ledger.BuildCalendar(sel.Year, sel.Month, txs, sel.Day, today, s.firstWeekday)
	})
	if err != nil {
		return nil, err
	}
	return append([]core.CalendarCell(nil), cells...), nil
}

// MonthlySummary returns income and expense totals for the month.
func (s *LedgerService) MonthlySummary(ctx context.Context, year, month int) (core.MonthlySummary, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.MonthlySummary{}, err
	}
	key := ViewKey{View: "summary", Year: year, Month: month}
	return view(ctx, s, key, func(txs []core.Transaction) core.MonthlySummary {
		return ledger.MonthlySummary(year, month, txs)
	})
}

// MonthOverview returns the month totals with the per-category breakdown.
func (s *LedgerService) MonthOverview(ctx context.Context, year, month int) (core.MonthOverview, error) {
	if err := core.ValidateMonth(month); err != nil {
		return core.MonthOverview{}, err
	}
	key := ViewKey{View: "overview", Year: year, Month: month}
	ov, err := view(ctx, s, key, func(txs []core.Transaction) core.MonthOverview {
		return ledger.MonthOverview(year, month, txs)
	})
	if err != nil {
		return core.MonthOverview{}, err
	}
	ov.ByCategory = append([]core.CategoryAmount(nil), ov.ByCategory...)
	return ov, nil
}

// MonthTransactions returns the month's entries in insertion order.
func (s *LedgerService) MonthTransactions(ctx context.Context, year, month int) ([]core.Transaction, error) {
	if err := core.ValidateMonth(month); err != nil {
		return nil, err
	}
	key := ViewKey{View: "month", Year: year, Month: month}
	txs, err := view(ctx, s, key, func(txs []core.Transaction) []core.Transaction {
		return ledger.MonthTransactions(year, month, txs)
	})
	if err != nil {
		return nil, err
	}
	return append([]core.Transaction(nil), txs...), nil
}

// DayDetail returns the ordered entries of one day.
func (s *LedgerService) DayDetail(ctx context.Context, year, month, day int) ([]core.Transaction, error) {
	d := core.NewDate(year, month, day)
	if err := d.Validate(); err != nil {
		return nil, err
	}
	key := ViewKey{View: "day", Year: year, Month: month, Day: day}
	txs, err := view(ctx, s, key, func(txs []core.Transaction) []core.Transaction {
		return ledger.DayDetail(d, txs)
	})
	if err != nil {
		return nil, err
	}
	return append([]core.Transaction(nil), txs...), nil
}

// Submit ingests a submission and appends it to the store.
func (s *LedgerService) Submit(ctx context.Context, sub core.EntrySubmission) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.ingestor.Ingest(ctx, sub)
	if err != nil {
		return core.Transaction{}, err
	}
	rev, revErr := s.store.Revision(ctx)
	s.logger.LogEntryIngested(ctx, t, rev, revErr)
	return t, nil
}

// Enqueue checks the submission and publishes it to the durable queue. The
// transaction is stored later by the queue consumer through Submit.
func (s *LedgerService) Enqueue(ctx context.Context, sub core.EntrySubmission) (string, error) {
	if s.queue == nil {
		return "", ErrNoQueue
	}
	if _, err := s.ingestor.Normalize(sub); err != nil {
		return "", err
	}
	msg := amqp.NewEntryMessage(sub)
	if err := s.queue.PublishEntry(ctx, msg); err != nil {
		return "", fmt.Errorf("enqueue entry: %w", err)
	}
	s.logger.LogEntryQueued(ctx, msg.ID)
	return msg.ID, nil
}

// HandleEntryMessage is the queue consumer callback. Rejected input is
// logged and acknowledged; storage errors are returned so the message is
// redelivered.
func (s *LedgerService) HandleEntryMessage(ctx context.Context, msg *amqp.EntryMessage) error {
	_, err := s.Submit(ctx, msg.Submission())
	if err != nil && core.IsValidation(err) {
		s.logger.LogError(ctx, "Dropping rejected entry message", err,
			applog.ComponentQueue, applog.OpValidate,
			applog.LogFields{applog.FieldMessageID: msg.ID})
		return nil
	}
	return err
}

func validateSelection(sel core.Selection) error {
	if err := core.ValidateMonth(sel.Month); err != nil {
		return err
	}
	if sel.Day < 0 || sel.Day > core.DaysInMonth(sel.Year, sel.Month) {
		return core.ErrInvalidDay
	}
	return nil
}

// Entries returns the submitter background producers should use: the
// durable queue when one is configured, direct ingestion otherwise.
func (s *LedgerService) Entries() EntrySubmitter {
	if s.queue == nil {
		return s
	}
	return queueSubmitter{s}
}

// queueSubmitter publishes entries instead of storing them. The returned
// transaction is what the consumer will store.
type queueSubmitter struct {
	s *LedgerService
}

func (q queueSubmitter) Submit(ctx context.Context, sub core.EntrySubmission) (core.Transaction, error) {
	t, err := q.s.ingestor.Normalize(sub)
	if err != nil {
		return core.Transaction{}, err
	}
	if _, err := q.s.Enqueue(ctx, sub); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
