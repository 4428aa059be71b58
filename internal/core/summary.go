package core

// Selection is the view state the presentation layer passes into every read.
// Day is 0 when no day is selected.
type Selection struct {
	Year  int
	Month int // 1-12
	Day   int
}

// CalendarCell is one slot of the month grid. Blank cells pad the first
// week before day 1 and carry no other data.
type CalendarCell struct {
	Blank        bool
	Day          int
	IsToday      bool
	IsSelected   bool
	IncomeTotal  Money
	ExpenseTotal Money
}

// MonthlySummary holds income and expense totals for one month.
type MonthlySummary struct {
	Income  Money
	Expense Money
}

// Net returns income minus expense.
func (s MonthlySummary) Net() int64 {
	return int64(s.Income) - int64(s.Expense)
}

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category
	Amount   Money
}

// MonthOverview is a compact summary for a specific year+month.
type MonthOverview struct {
	Year       int
	Month      int // 1-12
	Summary    MonthlySummary
	ByCategory []CategoryAmount // expense side only
}
