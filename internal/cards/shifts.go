package cards

import (
	"time"

	"schedboard/internal/model"
)

// ShiftRow is "name: 9:00 am - 5:00 pm" under an event card.
type ShiftRow struct {
	Text string
	Now  bool
}

// EventShifts groups shifts by identity key (site, title, day), so each card
// lists everyone staffing one event.
func EventShifts(items []model.Item, now time.Time) []Card[ShiftRow] {
	out, _ := groupBy(items,
		func(it model.Item) string { return it.IdentityKey },
		func(it model.Item) string {
			return model.ShortDate(it.Start) + ": " + it.Location + " - " + it.Title
		},
		func(it model.Item) (ShiftRow, error) {
			return ShiftRow{
				Text: personName(it) + ": " + model.ClockTime(it.Start) + " - " + model.ClockTime(it.End),
				Now:  it.Active(now),
			}, nil
		},
	)
	return out
}

// ShiftAggregator adapts EventShifts to the Aggregator interface.
type ShiftAggregator struct{}

func (ShiftAggregator) Aggregate(items []model.Item, now time.Time) (Set, error) {
	return toSet(TemplateShift, EventShifts(items, now)), nil
}
