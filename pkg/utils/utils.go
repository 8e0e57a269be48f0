package utils

import "time"

// AddMonths shifts d by the given number of calendar months. When the day of
// month does not exist in the target month (e.g. Jan 31 + 1 month) the result
// clamps to the last day of that month, instead of the normalization
// time.AddDate would do.
func AddMonths(d time.Time, months int) time.Time {
	year, month, day := d.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, d.Location())
	lastDay := firstOfTarget.AddDate(0, 1, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day,
		d.Hour(), d.Minute(), d.Second(), d.Nanosecond(), d.Location())
}

// DaysBetween returns the number of whole days from one calendar date to
// another, ignoring the time-of-day component. Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
