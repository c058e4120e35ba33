package model

import "time"

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a falls on b's calendar day, judged in b's location.
func SameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// StartOfWeek returns midnight of the Sunday that begins t's week.
func StartOfWeek(t time.Time) time.Time {
	day := StartOfDay(t)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// InSameWeek reports whether a falls in the Sunday-based week containing b,
// judged in b's location.
func InSameWeek(a, b time.Time) bool {
	start := StartOfWeek(b)
	end := start.AddDate(0, 0, 7)
	a = a.In(b.Location())
	return !a.Before(start) && a.Before(end)
}

// ParseDate parses a YYYY-MM-DD calendar date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, loc)
}

// DateLayout is the calendar-date format used by forms and the CLI.
const DateLayout = "2006-01-02"
