package models

import "time"

const day = 24 * time.Hour

// DateOf truncates t to its calendar date at UTC midnight. Borrow, due and
// return dates are calendar dates.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the calendar date n days after date.
func AddDays(date time.Time, n int) time.Time {
	return DateOf(date).AddDate(0, 0, n)
}

// DaysBetween returns the whole number of calendar days from -> to.
// The result is negative when to is before from.
func DaysBetween(from, to time.Time) int {
	return int(DateOf(to).Sub(DateOf(from)) / day)
}
