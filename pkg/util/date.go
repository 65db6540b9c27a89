package util

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical calendar-date format used in storage keys.
const DateLayout = "2006-01-02"

// DateString formats t as a calendar date in t's location.
func DateString(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseClock parses a "HH:MM" 24-hour time of day.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q (expected HH:MM): %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// ClockToday anchors a "HH:MM" time of day to the calendar date of now,
// in now's location.
func ClockToday(now time.Time, clock string) (time.Time, error) {
	h, m, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, now.Location()), nil
}

// WeekStart returns Monday 00:00 of the week containing t, in t's location.
func WeekStart(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7 // Monday=0 .. Sunday=6
	day := t.AddDate(0, 0, -offset)
	return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, t.Location())
}

// WeekdayName returns the lowercase English weekday of t.
func WeekdayName(t time.Time) string {
	return strings.ToLower(t.Weekday().String())
}

// FormatClock12 renders t's time of day as e.g. "08:00 PM".
func FormatClock12(t time.Time) string {
	return t.Format("03:04 PM")
}
