// Package cards groups normalized schedule items into display cards.
//
// Every layout is the same single pass over a pre-sorted item list: the
// first item seen for a key opens a card at the end of the list, later items
// with that key append rows to it in place. Card order is therefore
// first-seen key order and rows keep scan order.
package cards

import (
	"time"

	"schedboard/internal/model"
)

// Card is one display bucket.
type Card[R any] struct {
	Key   string
	Title string
	Rows  []R
}

// Template ids of the card fragments; see render.Render.
const (
	TemplateLabor     = "labor-card"
	TemplateShift     = "shift-card"
	TemplateEvent     = "event-card"
	TemplateEventDate = "event-date-group"
)

// Set is an aggregator's output: cards ready for one card template.
type Set struct {
	TemplateID string
	Cards      []any
}

// Aggregator turns a sorted item list into cards. now is the instant used
// for row highlighting; callers pass a fresh value on every render.
type Aggregator interface {
	Aggregate(items []model.Item, now time.Time) (Set, error)
}

// groupBy is the shared scan-and-bucket pass. row errors abort the pass.
func groupBy[T, R any](in []T, key, title func(T) string, row func(T) (R, error)) ([]Card[R], error) {
	var out []Card[R]
	index := make(map[string]int)

	for _, v := range in {
		r, err := row(v)
		if err != nil {
			return nil, err
		}

		k := key(v)
		i, seen := index[k]
		if !seen {
			i = len(out)
			index[k] = i
			out = append(out, Card[R]{Key: k, Title: title(v)})
		}
		out[i].Rows = append(out[i].Rows, r)
	}
	return out, nil
}

func toSet[R any](templateID string, in []Card[R]) Set {
	cards := make([]any, len(in))
	for i, c := range in {
		cards[i] = c
	}
	return Set{TemplateID: templateID, Cards: cards}
}
