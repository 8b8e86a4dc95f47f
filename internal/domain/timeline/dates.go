package timeline

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used for every date the package
// accepts or emits.
const DateLayout = "2006-01-02"

// ParseDate parses a calendar date. Plain YYYY-MM-DD and full RFC3339
// timestamps are accepted; for timestamps only the written calendar day is
// kept. The result is local midnight of that day.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.ParseInLocation(DateLayout, s, time.Local); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local), true
	}
	return time.Time{}, false
}

// FormatDate renders t as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay keeps the calendar day of t and drops the time of day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// Today is local midnight of the current day.
func Today() time.Time {
	return StartOfDay(time.Now())
}

// AddDays shifts a date by whole calendar days.
func AddDays(t time.Time, days int) time.Time {
	return StartOfDay(t).AddDate(0, 0, days)
}

func representable(t time.Time) bool {
	return t.Year() >= 1 && t.Year() <= 9999
}

// referenceDay resolves the optional "today" argument: the zero time means
// the real clock.
func referenceDay(today time.Time) time.Time {
	if today.IsZero() {
		return Today()
	}
	return StartOfDay(today)
}
