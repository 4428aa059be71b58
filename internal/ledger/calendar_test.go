package ledger

import (
	"testing"
	"time"

	"gagyebu/internal/core"
)

func TestWeekdayOffset(t *testing.T) {
	tests := []struct {
		name         string
		year, month  int
		firstWeekday time.Weekday
		want         int
	}{
		{"may 2025 sunday start", 2025, 5, time.Sunday, 4},
		{"may 2025 monday start", 2025, 5, time.Monday, 3},
		{"feb 2026 starts on sunday", 2026, 2, time.Sunday, 0},
		{"feb 2026 monday start", 2026, 2, time.Monday, 6},
		{"feb 2024", 2024, 2, time.Sunday, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekdayOffset(tt.year, tt.month, tt.firstWeekday); got != tt.want {
				t.Errorf("WeekdayOffset() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestBuildCalendarShape(t *testing.T) {
	for year := 2023; year <= 2025; year++ {
		for month := 1; month <= 12; month++ {
			for _, fw := range []time.Weekday{time.Sunday, time.Monday} {
				cells := BuildCalendar(year, month, nil, 0, core.Date{}, fw)
				offset := WeekdayOffset(year, month, fw)
				days := core.DaysInMonth(year, month)
				if len(cells) != offset+days {
					t.Fatalf("%d-%02d: len=%d want %d", year, month, len(cells), offset+days)
				}
				for i := 0; i < offset; i++ {
					if !cells[i].Blank {
						t.Fatalf("%d-%02d: cell %d should be blank", year, month, i)
					}
				}
				for i, c := range cells[offset:] {
					if c.Blank || c.Day != i+1 {
						t.Fatalf("%d-%02d: cell %d has day %d", year, month, offset+i, c.Day)
					}
				}
			}
		}
	}
}

func TestBuildCalendarTotalsAndFlags(t *testing.T) {
	txs := DemoTransactions()
	// Outside the month, must not leak into May.
	txs = append(txs,
		core.Transaction{Date: core.NewDate(2025, 4, 30), Expense: 7777, Kind: core.KindExpense},
		core.Transaction{Date: core.NewDate(2025, 6, 1), Income: 8888, Kind: core.KindIncome},
	)

	today := core.NewDate(2025, 5, 9)
	cells := BuildCalendar(2025, 5, txs, 27, today, time.Sunday)
	offset := WeekdayOffset(2025, 5, time.Sunday)
	cell := func(day int) core.CalendarCell { return cells[offset+day-1] }

	if c := cell(1); c.IncomeTotal != 150000 || c.ExpenseTotal != 50000 {
		t.Fatalf("day 1 totals: %+v", c)
	}
	if c := cell(9); c.ExpenseTotal != 64500 || c.IncomeTotal != 0 || !c.IsToday {
		t.Fatalf("day 9: %+v", c)
	}
	if c := cell(27); c.IncomeTotal != 200000 || c.ExpenseTotal != 15000 || !c.IsSelected || c.IsToday {
		t.Fatalf("day 27: %+v", c)
	}
	if c := cell(2); c.IncomeTotal != 0 || c.ExpenseTotal != 0 || c.IsSelected {
		t.Fatalf("day 2 should be empty: %+v", c)
	}

	var sum core.MonthlySummary
	selected, todays := 0, 0
	for _, c := range cells {
		sum.Income += c.IncomeTotal
		sum.Expense += c.ExpenseTotal
		if c.IsSelected {
			selected++
		}
		if c.IsToday {
			todays++
		}
	}
	if want := MonthlySummary(2025, 5, txs); sum != want {
		t.Fatalf("grid totals %+v differ from monthly summary %+v", sum, want)
	}
	if selected != 1 || todays != 1 {
		t.Fatalf("selected=%d today=%d, want 1 each", selected, todays)
	}
}

func TestBuildCalendarTodayInOtherMonth(t *testing.T) {
	cells := BuildCalendar(2025, 5, nil, 0, core.NewDate(2025, 6, 9), time.Sunday)
	for _, c := range cells {
		if c.IsToday || c.IsSelected {
			t.Fatalf("no cell should be flagged: %+v", c)
		}
	}
}
