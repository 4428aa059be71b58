package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	Monthly Cycle = "monthly"
	Yearly  Cycle = "yearly"
	Weekly  Cycle = "weekly"
	Daily   Cycle = "daily"
)

const maxDescriptionLen = 200

var ErrInvalidFixedExpense = errors.New("invalid fixed expense")

// Cycle is how often a fixed expense repeats.
type Cycle string

var cycleLabels = map[string]Cycle{
	"monthly": Monthly, "월간": Monthly,
	"weekly": Weekly, "주간": Weekly,
	"yearly": Yearly, "연간": Yearly,
	"daily": Daily, "일간": Daily,
}

// ParseCycle accepts the English names and the labels of the fixed-expense form.
func ParseCycle(s string) (Cycle, error) {
	c, ok := cycleLabels[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return "", fmt.Errorf("%w: repetition cycle %q", ErrInvalidFixedExpense, s)
	}
	return c, nil
}

// FixedExpense is a recurring cost that turns into an ordinary expense
// transaction every time it falls due.
type FixedExpense struct {
	ID            int64
	Description   string
	Amount        Money
	PaymentMethod string
	Category      Category
	Every         Cycle
	StartDate     Date
	EndDate       Date // zero means open-ended
	LastExecution time.Time
}

// ActiveOn reports whether the fixed expense runs on day d.
func (fe FixedExpense) ActiveOn(d Date) bool {
	if d.Before(fe.StartDate) {
		return false
	}
	if !fe.EndDate.IsZero() && d.After(fe.EndDate) {
		return false
	}
	return true
}

// Submission builds the entry submission recorded when the expense falls due.
func (fe FixedExpense) Submission(now time.Time) EntrySubmission {
	return EntrySubmission{
		Date:     now,
		Amount:   fmt.Sprintf("%d", int64(fe.Amount)),
		Memo:     fe.Description,
		Type:     string(EntryExpense),
		Category: string(fe.Category),
		Payment:  fe.PaymentMethod,
	}
}

func (fe FixedExpense) Validate() error {
	if err := fe.StartDate.Validate(); err != nil {
		return fmt.Errorf("%w: start date: %v", ErrInvalidFixedExpense, err)
	}

	if !fe.EndDate.IsZero() {
		if err := fe.EndDate.Validate(); err != nil {
			return fmt.Errorf("%w: end date: %v", ErrInvalidFixedExpense, err)
		}
		if fe.EndDate.Before(fe.StartDate) {
			return fmt.Errorf("%w: end date before start date", ErrInvalidFixedExpense)
		}
	}

	switch fe.Every {
	case Daily, Weekly, Monthly, Yearly:
	default:
		return fmt.Errorf("%w: repetition type %q", ErrInvalidFixedExpense, fe.Every)
	}

	if len(strings.TrimSpace(fe.Description)) == 0 {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(fe.Description) > maxDescriptionLen {
		return fmt.Errorf("%w: description too long (max 200 characters)", ErrInvalidFixedExpense)
	}

	if fe.Amount <= 0 {
		return ErrInvalidAmount
	}
	if fe.Category.IsTransfer() {
		return ErrCategoryMismatch
	}
	return nil
}
