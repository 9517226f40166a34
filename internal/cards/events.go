package cards

import (
	"strings"
	"time"

	"schedboard/internal/model"
)

// EventRow is one booking in a date card.
type EventRow struct {
	Now        bool
	Room       string
	Title      string
	BookStart  string
	EventStart string
	EventEnd   string
	BookEnd    string
	StatusID   string
}

// EventListOptions tunes the event list.
type EventListOptions struct {
	// RoomNumberOnly shows "204" for "STU 204".
	RoomNumberOnly bool
	// Nested groups per event first, then nests event cards under dates.
	Nested bool
}

func eventRow(it model.Item, now time.Time, opts EventListOptions) EventRow {
	room := it.Location
	if opts.RoomNumberOnly {
		if _, num, ok := strings.Cut(room, " "); ok {
			room = num
		}
	}
	return EventRow{
		Now:        it.Active(now),
		Room:       room,
		Title:      it.Title,
		BookStart:  model.CompactTime(it.WindowStart()),
		EventStart: model.CompactTime(it.Start),
		EventEnd:   model.CompactTime(it.End),
		BookEnd:    model.CompactTime(it.WindowEnd()),
		StatusID:   it.StatusID,
	}
}

// EventList groups bookings by date label.
func EventList(items []model.Item, now time.Time, opts EventListOptions) []Card[EventRow] {
	out, _ := groupBy(items,
		func(it model.Item) string { return it.DateLabel },
		func(it model.Item) string { return it.DateLabel },
		func(it model.Item) (EventRow, error) { return eventRow(it, now, opts), nil },
	)
	return out
}

// DateGroup is a date heading with one card per event beneath it.
type DateGroup = Card[Card[EventRow]]

// NestByDate is the narrow-screen layout: a first pass groups bookings per
// date and title, a second pass over those cards groups them by date. The
// same title in two rooms is one event card with a row per room.
func NestByDate(items []model.Item, now time.Time, opts EventListOptions) []DateGroup {
	labels := make(map[string]string)
	events, _ := groupBy(items,
		func(it model.Item) string {
			k := it.DateLabel + "\n" + it.Title
			labels[k] = it.DateLabel
			return k
		},
		func(it model.Item) string { return it.Title },
		func(it model.Item) (EventRow, error) { return eventRow(it, now, opts), nil },
	)

	out, _ := groupBy(events,
		func(c Card[EventRow]) string { return labels[c.Key] },
		func(c Card[EventRow]) string { return labels[c.Key] },
		func(c Card[EventRow]) (Card[EventRow], error) { return c, nil },
	)
	return out
}

// EventListAggregator adapts EventList / NestByDate to the Aggregator
// interface.
type EventListAggregator struct {
	Options EventListOptions
}

func (a EventListAggregator) Aggregate(items []model.Item, now time.Time) (Set, error) {
	if a.Options.Nested {
		return toSet(TemplateEventDate, NestByDate(items, now, a.Options)), nil
	}
	return toSet(TemplateEvent, EventList(items, now, a.Options)), nil
}
