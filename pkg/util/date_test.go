package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekStartIsAlwaysMonday(t *testing.T) {
	// 2025-03-03 is a Monday.
	monday := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	for offset := 0; offset < 7; offset++ {
		d := monday.AddDate(0, 0, offset).Add(13 * time.Hour)
		assert.Equal(t, monday, WeekStart(d), "offset %d", offset)
	}
}

func TestParseClock(t *testing.T) {
	h, m, err := ParseClock("09:05")
	require.NoError(t, err)
	assert.Equal(t, 9, h)
	assert.Equal(t, 5, m)

	_, _, err = ParseClock("25:00")
	assert.Error(t, err)
	_, _, err = ParseClock("9pm")
	assert.Error(t, err)
}

func TestClockTodayKeepsLocation(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	now := time.Date(2025, 3, 3, 23, 59, 0, 0, loc)
	at, err := ClockToday(now, "09:00")
	require.NoError(t, err)

	assert.Equal(t, loc, at.Location())
	assert.Equal(t, "2025-03-03", DateString(at))
	assert.Equal(t, 9, at.Hour())
}

func TestWeekdayName(t *testing.T) {
	assert.Equal(t, "monday", WeekdayName(time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "sunday", WeekdayName(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)))
}
