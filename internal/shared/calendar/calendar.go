// Package calendar provides the date arithmetic shared by quotes and
// invoices. Document dates are calendar dates in UTC.
package calendar

import "time"

// DateOf truncates t to midnight UTC of its UTC calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddDays returns the date n days after the date of t.
func AddDays(t time.Time, n int) time.Time {
	return DateOf(t).AddDate(0, 0, n)
}

// IsAfterDate reports whether now falls on a calendar day after deadline.
// A deadline is inclusive: on the deadline day itself this returns false.
func IsAfterDate(now, deadline time.Time) bool {
	return DateOf(now).After(DateOf(deadline))
}

// DaysIn returns the number of days of month m in year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// NextMonthly returns the same day-of-month one month after from, using
// anchorDay as the preferred day and clamping to the last day of shorter
// months. Jan 31 (anchor 31) gives Feb 29 in a leap year, and Feb 29 with
// anchor 31 gives Mar 31.
func NextMonthly(from time.Time, anchorDay int) time.Time {
	from = DateOf(from)
	if anchorDay < 1 || anchorDay > 31 {
		anchorDay = from.Day()
	}
	y, m, _ := from.Date()
	m++
	if m > time.December {
		m = time.January
		y++
	}
	day := min(anchorDay, DaysIn(y, m))
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}
