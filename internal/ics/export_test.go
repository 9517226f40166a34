package ics

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedboard/internal/model"
)

func TestExportRoundTrip(t *testing.T) {
	start := time.Date(2025, 1, 6, 15, 0, 0, 0, time.UTC)
	items := []model.Item{
		{
			IdentityKey: "1\nTeam Meeting\n20250106",
			Title:       "Team Meeting",
			Location:    "Main Hall",
			Start:       start,
			End:         start.Add(2 * time.Hour),
			Person:      &model.Person{Name: "Ada Lovelace"},
		},
		{
			IdentityKey: "Monday, January 6th",
			Title:       "Chess Club",
			Location:    "STU 204",
			Start:       start.Add(3 * time.Hour),
			End:         start.Add(5 * time.Hour),
			SetupStart:  start.Add(2*time.Hour + 45*time.Minute),
			TeardownEnd: start.Add(5*time.Hour + 30*time.Minute),
			StatusID:    "1",
		},
	}

	out := Export(items, "Lobby", start)
	assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
	assert.Contains(t, out, "X-WR-CALNAME:Lobby")

	cal, err := ical.ParseCalendar(strings.NewReader(out))
	require.NoError(t, err)
	events := cal.Events()
	require.Len(t, events, 2)

	assert.Equal(t, "Team Meeting", events[0].GetProperty(ical.ComponentPropertySummary).Value)
	assert.Equal(t, "Main Hall", events[0].GetProperty(ical.ComponentPropertyLocation).Value)
	assert.Equal(t, "20250106T150000Z", events[0].GetProperty(ical.ComponentPropertyDtStart).Value)
	assert.Contains(t, events[0].GetProperty(ical.ComponentPropertyDescription).Value, "Ada Lovelace")

	assert.Contains(t, events[1].GetProperty(ical.ComponentPropertyDescription).Value, "Status: 1")
	assert.NotEqual(t,
		events[0].GetProperty(ical.ComponentPropertyUniqueId).Value,
		events[1].GetProperty(ical.ComponentPropertyUniqueId).Value,
	)
}

func TestUIDStableAndDistinct(t *testing.T) {
	it := model.Item{IdentityKey: "k", Title: "t", Start: time.Unix(0, 0)}
	assert.Equal(t, UID(it), UID(it))

	dup := Export([]model.Item{it, it}, "", time.Unix(0, 0))
	assert.Equal(t, 2, strings.Count(dup, "UID:"))
	assert.Contains(t, dup, "UID:"+UID(it)+"@schedboard")
	assert.Contains(t, dup, "UID:"+UID(it)+"-a@schedboard")
}

func TestExportEmpty(t *testing.T) {
	out := Export(nil, "", time.Unix(0, 0))
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.NotContains(t, out, "BEGIN:VEVENT")
}
