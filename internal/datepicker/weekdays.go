package datepicker

import "sort"

// WeekdayLabels are the single-letter column headings, Sunday first.
var WeekdayLabels = [DaysPerWeek]string{"S", "M", "T", "W", "T", "F", "S"}

// ToggleWeekday returns a sorted copy of days with d added or removed.
// Weekdays run 0=Sunday through 6=Saturday; anything else is ignored.
func ToggleWeekday(days []int, d int) []int {
	seen := make(map[int]bool, len(days)+1)
	out := make([]int, 0, len(days)+1)
	present := false
	for _, v := range days {
		if v < 0 || v >= DaysPerWeek || seen[v] {
			continue
		}
		seen[v] = true
		if v == d {
			present = true
			continue
		}
		out = append(out, v)
	}
	if !present && d >= 0 && d < DaysPerWeek {
		out = append(out, d)
	}
	sort.Ints(out)
	return out
}
