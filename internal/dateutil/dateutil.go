// Package dateutil provides calendar-day arithmetic for due dates and
// reminder trigger dates. All comparisons are at day granularity; the
// time-of-day portion of inputs is discarded.
package dateutil

import "time"

// Midnight truncates t to the start of its calendar day, keeping the
// location.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the whole calendar days from 'from' to 'to'
// (positive when 'to' is later). Dates are compared as UTC calendar days
// so DST transitions cannot skew the count.
func DaysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}

// SameDay reports whether both times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return DaysBetween(a, b) == 0
}

// AddDays shifts t by n calendar days, keeping midnight normalization.
func AddDays(t time.Time, n int) time.Time {
	return Midnight(t).AddDate(0, 0, n)
}

// ClampDayOfMonth returns day limited to the number of days in the month
// containing ref. A utility with default day 31 bills on the 30th in
// April and the 28th (or 29th) in February.
func ClampDayOfMonth(ref time.Time, day int) int {
	last := DaysInMonth(ref.Month(), ref.Year())
	if day > last {
		return last
	}
	return day
}

// DaysInMonth returns the length of the given month.
func DaysInMonth(month time.Month, year int) int {
	// Move to next month, roll back a day.
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return firstOfMonth.AddDate(0, 1, -1).Day()
}
