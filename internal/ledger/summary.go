package ledger

import (
	"sort"

	"gagyebu/internal/core"
)

// MonthlySummary sums income and expense over every transaction dated within
// the month, first and last day included.
func MonthlySummary(year, month int, txs []core.Transaction) core.MonthlySummary {
	first, last := core.FirstOfMonth(year, month), core.LastOfMonth(year, month)
	var s core.MonthlySummary
	for _, t := range txs {
		if !t.Date.Between(first, last) {
			continue
		}
		s.Income += t.Income
		s.Expense += t.Expense
	}
	return s
}

// MonthTransactions returns the transactions dated within the month in
// insertion order.
func MonthTransactions(year, month int, txs []core.Transaction) []core.Transaction {
	first, last := core.FirstOfMonth(year, month), core.LastOfMonth(year, month)
	out := make([]core.Transaction, 0)
	for _, t := range txs {
		if t.Date.Between(first, last) {
			out = append(out, t)
		}
	}
	return out
}

// DayDetail returns the transactions dated exactly d. Entries with a nonzero
// expense come first; income entries and zero/zero memos follow. Insertion
// order is kept inside each group.
func DayDetail(d core.Date, txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0)
	for _, t := range txs {
		if t.Date == d {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].IsExpense() && !out[j].IsExpense()
	})
	return out
}

// MonthOverview adds per-category expense totals to the month summary.
// Categories are listed by descending amount, ties by category name;
// uncategorized expenses are reported under "other".
func MonthOverview(year, month int, txs []core.Transaction) core.MonthOverview {
	first, last := core.FirstOfMonth(year, month), core.LastOfMonth(year, month)
	ov := core.MonthOverview{Year: year, Month: month}

	byCat := make(map[core.Category]core.Money)
	for _, t := range txs {
		if !t.Date.Between(first, last) {
			continue
		}
		ov.Summary.Income += t.Income
		ov.Summary.Expense += t.Expense
		if t.Expense == 0 {
			continue
		}
		cat := t.Category
		if cat == core.CategoryNone {
			cat = core.CategoryOther
		}
		byCat[cat] += t.Expense
	}

	for c, amt := range byCat {
		ov.ByCategory = append(ov.ByCategory, core.CategoryAmount{Category: c, Amount: amt})
	}
	sort.Slice(ov.ByCategory, func(i, j int) bool {
		a, b := ov.ByCategory[i], ov.ByCategory[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Category < b.Category
	})
	return ov
}
