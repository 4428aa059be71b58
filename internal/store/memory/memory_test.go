package memory

import (
	"context"
	"testing"
	"time"

	"gagyebu/internal/core"
)

func TestMemoryStoreAppendKeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := New()

	memos := []string{"커피", "월급", "간식"}
	for i, m := range memos {
		if err := s.Append(ctx, core.Transaction{Date: core.NewDate(2025, 5, 27), Expense: core.Money(i + 1), Memo: m, Kind: core.KindExpense}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := s.All(ctx)
	if err != nil || len(all) != 3 {
		t.Fatalf("unexpected all: %v err=%v", all, err)
	}
	for i, m := range memos {
		if all[i].Memo != m {
			t.Fatalf("position %d: got %q want %q", i, all[i].Memo, m)
		}
	}

	rev, _ := s.Revision(ctx)
	if rev != 3 {
		t.Fatalf("expected revision 3, got %d", rev)
	}
}

func TestMemoryStoreAllReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewSeeded([]core.Transaction{{Date: core.NewDate(2025, 5, 1), Memo: "a", Kind: core.KindIncome}})

	all, _ := s.All(ctx)
	all[0].Memo = "changed"

	again, _ := s.All(ctx)
	if again[0].Memo != "a" {
		t.Fatalf("store mutated through returned slice")
	}
	if rev, _ := s.Revision(ctx); rev != 1 {
		t.Fatalf("seeded revision = %d, want 1", rev)
	}
}

func TestMemoryStoreFixedExpenses(t *testing.T) {
	ctx := context.Background()
	s := New()

	fe := core.FixedExpense{
		Description: "월세",
		Amount:      500000,
		Category:    core.CategoryHousing,
		Every:       core.Monthly,
		StartDate:   core.NewDate(2025, 1, 1),
		EndDate:     core.NewDate(2025, 6, 30),
	}
	id, err := s.CreateFixedExpense(ctx, fe)
	if err != nil || id != 1 {
		t.Fatalf("create: id=%d err=%v", id, err)
	}
	if _, err := s.CreateFixedExpense(ctx, core.FixedExpense{}); err == nil {
		t.Fatalf("expected validation error")
	}

	active, _ := s.ActiveFixedExpenses(ctx, time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC))
	if len(active) != 1 {
		t.Fatalf("expected 1 active, got %d", len(active))
	}
	active, _ = s.ActiveFixedExpenses(ctx, time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC))
	if len(active) != 0 {
		t.Fatalf("expected none active after end date, got %d", len(active))
	}

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := s.MarkExecuted(ctx, id, at); err != nil {
		t.Fatalf("mark: %v", err)
	}
	list, _ := s.ListFixedExpenses(ctx)
	if !list[0].LastExecution.Equal(at) {
		t.Fatalf("last execution not recorded")
	}
	if err := s.MarkExecuted(ctx, 42, at); err == nil {
		t.Fatalf("expected not found error")
	}
}

func TestMemoryStoreErrorReports(t *testing.T) {
	s := New()
	id, err := s.SaveErrorReport(context.Background(), core.ErrorReport{Content: "달력이 안 보여요"})
	if err != nil || id != 1 {
		t.Fatalf("save: id=%d err=%v", id, err)
	}
	if _, err := s.SaveErrorReport(context.Background(), core.ErrorReport{}); err == nil {
		t.Fatalf("expected validation error")
	}
	if got := s.ErrorReports(); len(got) != 1 || got[0].CreatedAt.IsZero() {
		t.Fatalf("unexpected reports %+v", got)
	}
}
