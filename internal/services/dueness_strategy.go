package services

import (
	"fmt"
	"time"

	"gagyebu/internal/core"
)

// DuenessChecker decides whether a fixed expense falls due at now, given
// when it last ran. A zero lastExecution means it never ran. All
// comparisons are made on calendar dates in now's location.
type DuenessChecker interface {
	IsDue(lastExecution, now time.Time, startDate core.Date) bool
}

// DailyChecker is due once per calendar day.
type DailyChecker struct{}

func (DailyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return core.DateOf(lastExecution.In(now.Location())).Before(core.DateOf(now))
}

// WeeklyChecker is due when seven calendar days have passed.
type WeeklyChecker struct{}

func (WeeklyChecker) IsDue(lastExecution, now time.Time, _ core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	return daysBetween(core.DateOf(lastExecution.In(now.Location())), core.DateOf(now)) >= 7
}

// MonthlyChecker is due once per month, on or after the start day. A start
// day past the end of a short month moves to that month's last day.
type MonthlyChecker struct{}

func (MonthlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	last, today := core.DateOf(lastExecution.In(now.Location())), core.DateOf(now)
	if last.Year == today.Year && last.Month == today.Month {
		return false
	}
	return today.Day >= clampDay(today.Year, int(today.Month), startDate.Day)
}

// YearlyChecker is due once per year, on or after the start month and day.
type YearlyChecker struct{}

func (YearlyChecker) IsDue(lastExecution, now time.Time, startDate core.Date) bool {
	if lastExecution.IsZero() {
		return true
	}
	last, today := core.DateOf(lastExecution.In(now.Location())), core.DateOf(now)
	if last.Year == today.Year {
		return false
	}
	anniversary := core.NewDate(today.Year, int(startDate.Month), clampDay(today.Year, int(startDate.Month), startDate.Day))
	return !today.Before(anniversary)
}

var duenessStrategies = map[core.Cycle]DuenessChecker{
	core.Daily:   DailyChecker{},
	core.Weekly:  WeeklyChecker{},
	core.Monthly: MonthlyChecker{},
	core.Yearly:  YearlyChecker{},
}

// GetDuenessChecker returns the checker for a repetition cycle.
func GetDuenessChecker(cycle core.Cycle) (DuenessChecker, error) {
	checker, ok := duenessStrategies[cycle]
	if !ok {
		return nil, fmt.Errorf("unknown repetition cycle: %s", cycle)
	}
	return checker, nil
}

func clampDay(year, month, day int) int {
	if n := core.DaysInMonth(year, month); day > n {
		return n
	}
	return day
}

func daysBetween(from, to core.Date) int {
	return int(to.Time().Sub(from.Time()).Hours() / 24)
}
