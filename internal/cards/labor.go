package cards

import (
	"time"

	"schedboard/internal/config"
	"schedboard/internal/model"
)

// LaborRow is one person's shift in the condensed labor view.
type LaborRow struct {
	Now          bool
	Icon         string
	Abbreviation string
	PersonName   string
	LocationName string
	InTime       string
	OutTime      string
}

// Labor groups shifts by calendar day. Every shift's location must have an
// entry in icons; a miss is a configuration error, not a dropped row.
func Labor(items []model.Item, now time.Time, icons map[string]config.LocationIcon) ([]Card[LaborRow], error) {
	return groupBy(items,
		func(it model.Item) string { return model.DayKey(it.Start) },
		func(it model.Item) string { return model.WeekdayDate(it.Start) },
		func(it model.Item) (LaborRow, error) {
			icon, ok := icons[it.LocationID]
			if !ok {
				return LaborRow{}, config.Invalidf("locations: no icon mapping for location id %q (%s)", it.LocationID, it.Location)
			}
			return LaborRow{
				Now:          it.Active(now),
				Icon:         icon.Icon,
				Abbreviation: icon.Abbreviation,
				PersonName:   personName(it),
				LocationName: it.Location,
				InTime:       model.ClockTime(it.Start),
				OutTime:      model.ClockTime(it.End),
			}, nil
		},
	)
}

// LaborAggregator adapts Labor to the Aggregator interface.
type LaborAggregator struct {
	Icons map[string]config.LocationIcon
}

func (a LaborAggregator) Aggregate(items []model.Item, now time.Time) (Set, error) {
	cards, err := Labor(items, now, a.Icons)
	if err != nil {
		return Set{}, err
	}
	return toSet(TemplateLabor, cards), nil
}

func personName(it model.Item) string {
	if it.Person == nil {
		return ""
	}
	return it.Person.Name
}
