package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gagyebu/internal/core"
	"gagyebu/internal/ledger"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "ledger.db")
	repo, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo, path
}

func TestSQLiteRepository_TransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	if rev, err := repo.Revision(ctx); err != nil || rev != 0 {
		t.Fatalf("empty revision = %d, %v", rev, err)
	}

	demo := ledger.DemoTransactions()
	demo = append(demo, core.Transaction{
		Date:           core.NewDate(2025, 5, 10),
		Expense:        300000,
		Category:       core.CategoryDeposit,
		Kind:           core.KindTransfer,
		TransferTarget: "적금",
	})
	for _, tx := range demo {
		if err := repo.Append(ctx, tx); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	all, err := repo.All(ctx)
	if err != nil {
		t.Fatalf("all: %v", err)
	}
	if len(all) != len(demo) {
		t.Fatalf("got %d transactions, want %d", len(all), len(demo))
	}
	for i := range demo {
		if all[i] != demo[i] {
			t.Fatalf("position %d: got %+v want %+v", i, all[i], demo[i])
		}
	}

	rev, _ := repo.Revision(ctx)
	if rev != uint64(len(demo)) {
		t.Fatalf("revision = %d, want %d", rev, len(demo))
	}

	if sum := ledger.MonthlySummary(2025, 5, all); sum.Income != 350000 || sum.Expense != 482000 {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestSQLiteRepository_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	repo, path := newTestRepo(t)
	if err := repo.Append(ctx, core.Transaction{Date: core.NewDate(2025, 5, 1), Income: 1, Kind: core.KindIncome}); err != nil {
		t.Fatalf("append: %v", err)
	}
	repo.Close()

	again, err := NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer again.Close()

	all, _ := again.All(ctx)
	if len(all) != 1 {
		t.Fatalf("expected 1 transaction after reopen, got %d", len(all))
	}

	v, dirty, err := SchemaVersion(path)
	if err != nil || dirty || v != 3 {
		t.Fatalf("schema version = %d dirty=%v err=%v", v, dirty, err)
	}
}

func TestSQLiteRepository_FixedExpenses(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	open := core.FixedExpense{
		Description: "통신비",
		Amount:      55000,
		Category:    core.CategoryUtilities,
		Every:       core.Monthly,
		StartDate:   core.NewDate(2025, 1, 25),
	}
	ended := core.FixedExpense{
		Description: "보험료",
		Amount:      80000,
		Category:    core.CategoryInsurance,
		Every:       core.Yearly,
		StartDate:   core.NewDate(2024, 3, 1),
		EndDate:     core.NewDate(2025, 2, 28),
	}
	openID, err := repo.CreateFixedExpense(ctx, open)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateFixedExpense(ctx, ended); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := repo.CreateFixedExpense(ctx, core.FixedExpense{}); err == nil {
		t.Fatalf("expected validation error")
	}

	kst := time.FixedZone("KST", 9*3600)
	active, err := repo.ActiveFixedExpenses(ctx, time.Date(2025, 2, 28, 9, 0, 0, 0, kst))
	if err != nil || len(active) != 2 {
		t.Fatalf("active on end date: %d, %v", len(active), err)
	}
	active, _ = repo.ActiveFixedExpenses(ctx, time.Date(2025, 3, 1, 9, 0, 0, 0, kst))
	if len(active) != 1 || active[0].ID != openID {
		t.Fatalf("expected only the open-ended expense, got %+v", active)
	}

	at := time.Date(2025, 3, 1, 9, 0, 0, 0, kst)
	if err := repo.MarkExecuted(ctx, openID, at); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := repo.MarkExecuted(ctx, 999, at); err == nil {
		t.Fatalf("expected not found")
	}

	list, _ := repo.ListFixedExpenses(ctx)
	if len(list) != 2 {
		t.Fatalf("expected 2 fixed expenses, got %d", len(list))
	}
	got := list[0]
	if !got.LastExecution.Equal(at) || got.Every != core.Monthly || got.StartDate != open.StartDate || !got.EndDate.IsZero() {
		t.Fatalf("unexpected round trip %+v", got)
	}
	if list[1].EndDate != ended.EndDate {
		t.Fatalf("end date lost: %+v", list[1])
	}
}

func TestSQLiteRepository_ErrorReports(t *testing.T) {
	ctx := context.Background()
	repo, _ := newTestRepo(t)

	id, err := repo.SaveErrorReport(ctx, core.ErrorReport{Content: "합계가 달라요"})
	if err != nil || id != 1 {
		t.Fatalf("save: id=%d err=%v", id, err)
	}
	if _, err := repo.SaveErrorReport(ctx, core.ErrorReport{Content: " "}); err == nil {
		t.Fatalf("expected validation error")
	}
	if n, _ := repo.CountErrorReports(ctx); n != 1 {
		t.Fatalf("count = %d, want 1", n)
	}
}
