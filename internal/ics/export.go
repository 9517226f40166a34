// Package ics exports the board's current items as an iCalendar feed.
package ics

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"schedboard/internal/model"
)

const productID = "-//schedboard//schedule board//EN"

// Export serializes items as a VCALENDAR. stamp is written as DTSTAMP on
// every event; name becomes X-WR-CALNAME when non-empty.
func Export(items []model.Item, name string, stamp time.Time) string {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	seen := make(map[string]int, len(items))
	for _, it := range items {
		uid := UID(it)
		// Identical items (same person on the same slot twice) still need
		// distinct UIDs.
		if n := seen[uid]; n > 0 {
			seen[uid] = n + 1
			uid = uid + "-" + string(rune('a'+n-1))
		} else {
			seen[uid] = 1
		}

		ev := cal.AddEvent(uid + "@schedboard")
		ev.SetDtStampTime(stamp)
		ev.SetStartAt(it.Start)
		ev.SetEndAt(it.End)
		ev.SetSummary(it.Title)
		if it.Location != "" {
			ev.SetLocation(it.Location)
		}
		if desc := description(it); desc != "" {
			ev.SetDescription(desc)
		}
	}
	return cal.Serialize()
}

// UID is a stable id for an item across refreshes.
func UID(it model.Item) string {
	h := sha1.New()
	h.Write([]byte(it.IdentityKey))
	h.Write([]byte{0})
	h.Write([]byte(it.Title))
	h.Write([]byte{0})
	h.Write([]byte(it.Start.UTC().Format(time.RFC3339)))
	if it.Person != nil {
		h.Write([]byte{0})
		h.Write([]byte(it.Person.Name))
	}
	return hex.EncodeToString(h.Sum(nil))[:20]
}

func description(it model.Item) string {
	var lines []string
	if it.Person != nil && it.Person.Name != "" {
		lines = append(lines, "Staff: "+it.Person.Name)
	}
	if it.HasBuffer() {
		lines = append(lines, "Booked: "+model.ClockTime(it.SetupStart)+" - "+model.ClockTime(it.TeardownEnd))
	}
	if it.StatusID != "" {
		lines = append(lines, "Status: "+it.StatusID)
	}
	return strings.Join(lines, "\n")
}
