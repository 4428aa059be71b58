package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindIncome   Kind = "income"
	KindExpense  Kind = "expense"
	KindTransfer Kind = "transfer"
)

const (
	EntryIncome  EntryType = "income"
	EntryExpense EntryType = "expense"
)

type (
	// Kind is the display kind of a transaction. Transfer is layered on top of
	// the income/expense split and does not change amount routing.
	Kind string

	// EntryType routes a submitted amount to the income or expense side.
	EntryType string

	// Money is a non-negative amount in whole currency units.
	Money int64

	Transaction struct {
		Date           Date
		Income         Money
		Expense        Money
		Memo           string
		Category       Category
		Kind           Kind
		PaymentMethod  string
		TransferTarget string
	}

	// EntrySubmission is the raw shape handed over by the entry form.
	EntrySubmission struct {
		Date     time.Time
		Amount   string
		Memo     string
		Type     string
		Category string
		Payment  string
		Transfer string
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrMalformedAmount  = errors.New("malformed amount")
	ErrInvalidEntryType = errors.New("invalid entry type")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrCategoryMismatch = errors.New("transfer category used on a non-transfer entry")
	ErrEmptyDescription = errors.New("empty description")

	ErrInvalidTransaction = errors.New("invalid transaction")
)

var entryTypeLabels = map[string]EntryType{
	"income": EntryIncome,
	"수입":     EntryIncome,
	"expense": EntryExpense,
	"지출":      EntryExpense,
}

// ParseEntryType accepts both the English and the localized form labels.
func ParseEntryType(s string) (EntryType, error) {
	t, ok := entryTypeLabels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntryType, s)
	}
	return t, nil
}

// Label returns the localized label shown by the entry form.
func (t EntryType) Label() string {
	switch t {
	case EntryIncome:
		return "수입"
	case EntryExpense:
		return "지출"
	}
	return ""
}

func (k Kind) IsValid() bool {
	switch k {
	case KindIncome, KindExpense, KindTransfer:
		return true
	}
	return false
}

func (m Money) Validate() error {
	if m < 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Int64 returns the raw amount.
func (m Money) Int64() int64 {
	return int64(m)
}

// Movement returns the nonzero side of the transaction, or zero for a memo entry.
func (t Transaction) Movement() Money {
	if t.Expense > 0 {
		return t.Expense
	}
	return t.Income
}

// IsExpense reports whether the transaction moves money out.
func (t Transaction) IsExpense() bool {
	return t.Expense > 0
}

func (t Transaction) Validate() error {
	if err := t.Date.Validate(); err != nil {
		return err
	}
	if err := t.Income.Validate(); err != nil {
		return err
	}
	if err := t.Expense.Validate(); err != nil {
		return err
	}
	if t.Income > 0 && t.Expense > 0 {
		return fmt.Errorf("%w: both income and expense are set", ErrInvalidTransaction)
	}
	if !t.Kind.IsValid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidTransaction, t.Kind)
	}
	if t.Category.IsTransfer() && t.Kind != KindTransfer {
		return ErrCategoryMismatch
	}
	if t.TransferTarget != "" && t.Kind != KindTransfer {
		return fmt.Errorf("%w: transfer target on a non-transfer entry", ErrInvalidTransaction)
	}
	return nil
}

// IsValidation reports whether err comes from rejecting input rather than
// from I/O. Retrying such an error cannot succeed.
func IsValidation(err error) bool {
	for _, target := range []error{
		ErrInvalidDay, ErrInvalidMonth, ErrInvalidDate, ErrInvalidAmount,
		ErrMalformedAmount, ErrInvalidEntryType, ErrUnknownCategory,
		ErrCategoryMismatch, ErrEmptyDescription, ErrEmptyReport, ErrReportTooLong,
		ErrInvalidTransaction, ErrInvalidFixedExpense,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
