package model

import "time"

// Person is the staff member assigned to a shift. Only roster sources
// (the shift API) populate it.
type Person struct {
	Name       string
	ExternalID string // employee code
}

// Item is the normalized form every source adapter produces. Items live for
// one poll cycle: they are built from a fresh fetch, grouped into cards,
// rendered, and dropped.
type Item struct {
	// IdentityKey groups records that belong to the same logical shift or
	// booking. It is stable across polls for the same upstream record.
	IdentityKey string

	// DateLabel is the human-readable day bucket, computed once by the
	// adapter in the display timezone.
	DateLabel string

	Title string

	// Location is the short room/site form shown on the board. LocationID
	// is the upstream location id used for icon lookup (shifts only).
	Location   string
	LocationID string

	// Start / End are the event itself.
	Start time.Time
	End   time.Time

	// SetupStart / TeardownEnd widen the window for sources with buffer
	// times. Both are zero when the source has none.
	SetupStart  time.Time
	TeardownEnd time.Time

	Person   *Person
	StatusID string
}

// HasBuffer reports whether the item carries a setup/teardown window.
func (it Item) HasBuffer() bool {
	return !it.SetupStart.IsZero() && !it.TeardownEnd.IsZero()
}

// WindowStart is the start of the outermost window: setup start when
// present, otherwise Start. Adapters sort by it.
func (it Item) WindowStart() time.Time {
	if it.HasBuffer() {
		return it.SetupStart
	}
	return it.Start
}

// WindowEnd mirrors WindowStart.
func (it Item) WindowEnd() time.Time {
	if it.HasBuffer() {
		return it.TeardownEnd
	}
	return it.End
}

// Active reports whether now falls in [WindowStart, WindowEnd).
func (it Item) Active(now time.Time) bool {
	return Within(now, it.WindowStart(), it.WindowEnd())
}

// Within reports whether t is at or after start and strictly before end.
func Within(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}
