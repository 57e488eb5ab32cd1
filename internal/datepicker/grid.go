// Package datepicker holds the selection model behind the date picker on the
// meeting creation page: the month grid, the ordered set of selected date
// keys, and the click-and-drag state machine that turns a pointer gesture
// into a rectangular range of dates.
//
// Nothing in this package performs I/O. The meetings plugin owns the
// selection (it lives in the draft) and hands it in on every request.
package datepicker

import (
	"fmt"
	"time"
)

// DaysPerWeek is the grid width.
const DaysPerWeek = 7

// MonthRef identifies the month the picker is showing.
type MonthRef struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) MonthRef {
	return MonthRef{Year: t.Year(), Month: t.Month()}
}

// first returns midnight UTC on day 1 of the month. Normalizing through
// time.Date lets out-of-range months (0, 13) roll into the adjacent year.
func (m MonthRef) first() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Prev returns the month before m.
func (m MonthRef) Prev() MonthRef {
	return MonthOf(m.first().AddDate(0, -1, 0))
}

// Next returns the month after m.
func (m MonthRef) Next() MonthRef {
	return MonthOf(m.first().AddDate(0, 1, 0))
}

// String formats the month like "January 2024".
func (m MonthRef) String() string {
	return m.first().Format("January 2006")
}

// DaysIn returns the number of days in the month.
func DaysIn(m MonthRef) int {
	// Day 0 of the following month is the last day of this one.
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstWeekday returns the weekday of day 1, 0=Sunday through 6=Saturday.
func FirstWeekday(m MonthRef) int {
	return int(m.first().Weekday())
}

// CalendarDay is one cell of the grid.
type CalendarDay struct {
	Year  int
	Month time.Month
	Day   int
}

// DayOf returns the calendar day of t in t's own location.
func DayOf(t time.Time) CalendarDay {
	return CalendarDay{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// Key returns the canonical YYYY-MM-DD form stored in a SelectionSet.
func (d CalendarDay) Key() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MonthRef returns the month the day belongs to.
func (d CalendarDay) MonthRef() MonthRef {
	return MonthRef{Year: d.Year, Month: d.Month}
}

// ParseKey parses a canonical date key. Only real calendar dates are
// accepted, so "2023-02-29" is rejected.
func ParseKey(key string) (CalendarDay, error) {
	t, err := time.Parse("2006-01-02", key)
	if err != nil {
		return CalendarDay{}, fmt.Errorf("parsing date key %q: %w", key, err)
	}
	return DayOf(t), nil
}

// BuildGrid returns the cells shown for the reference month: the tail of the
// previous month up to the first weekday, every day of the month, then the
// head of the next month to fill the last week. The length is always a
// positive multiple of DaysPerWeek.
func BuildGrid(ref MonthRef) []CalendarDay {
	ref = MonthOf(ref.first())
	prev := ref.Prev()
	next := ref.Next()

	before := FirstWeekday(ref)
	inMonth := DaysIn(ref)
	inPrev := DaysIn(prev)

	after := 0
	if used := (before + inMonth) % DaysPerWeek; used != 0 {
		after = DaysPerWeek - used
	}

	days := make([]CalendarDay, 0, before+inMonth+after)
	for i := 0; i < before; i++ {
		days = append(days, CalendarDay{
			Year:  prev.Year,
			Month: prev.Month,
			Day:   inPrev - (before - i - 1),
		})
	}
	for d := 1; d <= inMonth; d++ {
		days = append(days, CalendarDay{Year: ref.Year, Month: ref.Month, Day: d})
	}
	for d := 1; d <= after; d++ {
		days = append(days, CalendarDay{Year: next.Year, Month: next.Month, Day: d})
	}
	return days
}

// RowCol splits a grid index into its week row and weekday column.
func RowCol(index int) (row, col int) {
	return index / DaysPerWeek, index % DaysPerWeek
}
