package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestItemWindowPrefersBuffer(t *testing.T) {
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	plain := Item{Start: start, End: end}
	assert.False(t, plain.HasBuffer())
	assert.Equal(t, start, plain.WindowStart())
	assert.Equal(t, end, plain.WindowEnd())

	buffered := Item{
		Start:       start,
		End:         end,
		SetupStart:  start.Add(-15 * time.Minute),
		TeardownEnd: end.Add(30 * time.Minute),
	}
	assert.True(t, buffered.HasBuffer())
	assert.Equal(t, start.Add(-15*time.Minute), buffered.WindowStart())
	assert.Equal(t, end.Add(30*time.Minute), buffered.WindowEnd())
	assert.True(t, buffered.Active(start.Add(-time.Minute)))
	assert.False(t, plain.Active(start.Add(-time.Minute)))
}

func TestWithinIsHalfOpen(t *testing.T) {
	start := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	assert.True(t, Within(start, start, end))
	assert.True(t, Within(end.Add(-time.Nanosecond), start, end))
	assert.False(t, Within(end, start, end))
	assert.False(t, Within(start.Add(-time.Nanosecond), start, end))
}

func TestLabels(t *testing.T) {
	ts := time.Date(2025, 1, 2, 13, 5, 9, 0, time.UTC)

	assert.Equal(t, "20250102", DayKey(ts))
	assert.Equal(t, "Thursday, January 2nd", LongDate(ts))
	assert.Equal(t, "Thursday Jan 2nd", WeekdayDate(ts))
	assert.Equal(t, "Thu Jan 2nd", ShortDate(ts))
	assert.Equal(t, "1:05 pm", ClockTime(ts))
	assert.Equal(t, "1:05p", CompactTime(ts))
	assert.Equal(t, "9:00a", CompactTime(time.Date(2025, 1, 2, 9, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Thursday, January 2nd 2025, 1:05:09 pm", ClockLine(ts))
}
