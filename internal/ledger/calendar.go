// Package ledger derives the calendar grid, month totals and day detail from
// a snapshot of transactions. Everything here is a pure function of its
// arguments and is recomputed on every read.
package ledger

import (
	"time"

	"gagyebu/internal/core"
)

// WeekdayOffset returns how many blank cells precede day 1 of the month when
// weeks start on firstWeekday.
func WeekdayOffset(year, month int, firstWeekday time.Weekday) int {
	wd := core.FirstOfMonth(year, month).Weekday()
	return (int(wd) - int(firstWeekday) + 7) % 7
}

// BuildCalendar returns the month grid: WeekdayOffset blank cells followed by
// one cell per day, each carrying that day's income and expense totals.
// month must be in 1..12. selectedDay 0 selects nothing.
func BuildCalendar(year, month int, txs []core.Transaction, selectedDay int, today core.Date, firstWeekday time.Weekday) []core.CalendarCell {
	offset := WeekdayOffset(year, month, firstWeekday)
	days := core.DaysInMonth(year, month)

	// Bucket once instead of scanning the snapshot per day.
	income := make([]core.Money, days+1)
	expense := make([]core.Money, days+1)
	for _, t := range txs {
		if !t.Date.InMonth(year, month) || t.Date.Day < 1 || t.Date.Day > days {
			continue
		}
		income[t.Date.Day] += t.Income
		expense[t.Date.Day] += t.Expense
	}

	cells := make([]core.CalendarCell, 0, offset+days)
	for i := 0; i < offset; i++ {
		cells = append(cells, core.CalendarCell{Blank: true})
	}
	for day := 1; day <= days; day++ {
		cells = append(cells, core.CalendarCell{
			Day:          day,
			IsToday:      core.NewDate(year, month, day) == today,
			IsSelected:   day == selectedDay,
			IncomeTotal:  income[day],
			ExpenseTotal: expense[day],
		})
	}
	return cells
}
