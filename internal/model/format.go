package model

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Date and time labels used across adapters and card layouts. All of them
// format t in its own location; callers convert to the display zone first.

// DayKey is a sortable calendar-date key, e.g. "20250106".
func DayKey(t time.Time) string {
	return t.Format("20060102")
}

// LongDate renders "Monday, January 6th".
func LongDate(t time.Time) string {
	return t.Format("Monday, January ") + humanize.Ordinal(t.Day())
}

// WeekdayDate renders "Monday Jan 6th".
func WeekdayDate(t time.Time) string {
	return t.Format("Monday Jan ") + humanize.Ordinal(t.Day())
}

// ShortDate renders "Mon Jan 6th".
func ShortDate(t time.Time) string {
	return t.Format("Mon Jan ") + humanize.Ordinal(t.Day())
}

// ClockTime renders "9:05 am".
func ClockTime(t time.Time) string {
	return t.Format("3:04 pm")
}

// CompactTime renders "9:05a" / "1:30p".
func CompactTime(t time.Time) string {
	return strings.TrimSuffix(t.Format("3:04pm"), "m")
}

// ClockLine is the board clock, e.g. "Monday, January 6th 2025, 9:05:03 am".
func ClockLine(t time.Time) string {
	return LongDate(t) + t.Format(" 2006, 3:04:05 pm")
}
