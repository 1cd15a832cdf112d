// Package timeutil provides calendar-date utilities for streak and daily
// activity tracking. Streaks are counted in calendar days, not elapsed hours,
// so all comparisons here work on date components rather than durations.
// Callers are expected to pass times already in the user's timezone.
// No external dependencies - uses only standard library.
package timeutil

import "time"

// Common date/time formats.
const (
	// FormatDate is the standard date format (YYYY-MM-DD).
	FormatDate = "2006-01-02"
	// FormatDateTime is the standard datetime format.
	FormatDateTime = "2006-01-02 15:04"
)

// StartOfDay returns the start of the day (00:00:00) preserving the
// time's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the end of the day (23:59:59.999999999) preserving the
// time's location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999999, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
// The second time is converted into the first time's location so that a
// UTC-stored timestamp compares correctly against a local "now".
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// IsYesterdayOf reports whether t falls on the calendar day immediately
// before the day of now.
func IsYesterdayOf(t, now time.Time) bool {
	return SameDay(StartOfDay(now).AddDate(0, 0, -1), t)
}

// IsConsecutiveDay reports whether b is on the calendar day after a.
func IsConsecutiveDay(a, b time.Time) bool {
	return SameDay(StartOfDay(a).AddDate(0, 0, 1), b)
}

// DaysBetween returns the absolute number of calendar days between two times.
func DaysBetween(a, b time.Time) int {
	sa := StartOfDay(a)
	sb := StartOfDay(b.In(a.Location()))
	days := int(sb.Sub(sa).Hours() / 24)
	if days < 0 {
		days = -days
	}
	return days
}

// StartOfWeek returns the start of the week (Monday 00:00:00) containing t.
func StartOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return StartOfDay(t.AddDate(0, 0, -(weekday - 1)))
}

// FormatDateStr formats a time as a date string (YYYY-MM-DD).
func FormatDateStr(t time.Time) string {
	return t.Format(FormatDate)
}

// ParseDate parses a date string (YYYY-MM-DD) in the given location.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, loc)
}
