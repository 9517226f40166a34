package render

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"schedboard/internal/cards"
	"schedboard/internal/config"
	"schedboard/internal/mode"
	"schedboard/internal/model"
	"schedboard/internal/source"
)

var day = time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)

type fakeSource struct {
	name  string
	items []model.Item
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) FetchSchedule(ctx context.Context, _ int) ([]model.Item, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func shiftItem(name, title string, start time.Time) model.Item {
	return model.Item{
		IdentityKey: "1\n" + title + "\n" + model.DayKey(start),
		DateLabel:   model.WeekdayDate(start),
		Title:       title,
		Location:    "Main Hall",
		LocationID:  "555",
		Start:       start,
		End:         start.Add(2 * time.Hour),
		Person:      &model.Person{Name: name},
	}
}

func bookingItem(title, room string, start time.Time) model.Item {
	return model.Item{
		IdentityKey: model.LongDate(start),
		DateLabel:   model.LongDate(start),
		Title:       title,
		Location:    room,
		Start:       start,
		End:         start.Add(time.Hour),
		StatusID:    "5",
	}
}

func TestRenderShiftCard(t *testing.T) {
	card := cards.Card[cards.ShiftRow]{
		Title: "Mon Jan 6th: Hall - <Gala>",
		Rows: []cards.ShiftRow{
			{Text: "Ada: 9:00 am - 11:00 am", Now: true},
			{Text: "Grace: 10:00 am - 12:00 pm"},
		},
	}
	html, err := Render(cards.TemplateShift, card)
	require.NoError(t, err)

	assert.Contains(t, html, "&lt;Gala&gt;")
	assert.Contains(t, html, `<li class="now">Ada: 9:00 am - 11:00 am</li>`)
	assert.Contains(t, html, `<li>Grace: 10:00 am - 12:00 pm</li>`)
}

func TestRenderEventCardCarriesStatus(t *testing.T) {
	card := cards.Card[cards.EventRow]{
		Title: "Mon Jan 6th",
		Rows:  []cards.EventRow{{Room: "204", Title: "Chess", StatusID: "7"}},
	}
	html, err := Render(cards.TemplateEvent, card)
	require.NoError(t, err)
	assert.Contains(t, html, `data-status="7"`)
	assert.Contains(t, html, `<td class="room">204</td>`)
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := Render("weather-card", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)
}

func TestEveryCardTemplateIsDefined(t *testing.T) {
	for _, id := range []string{
		TemplateSingle, TemplateDual,
		cards.TemplateLabor, cards.TemplateShift, cards.TemplateEvent, cards.TemplateEventDate,
	} {
		assert.NotNil(t, templates.Lookup(id), id)
	}
}

func TestOrchestratorSingle(t *testing.T) {
	src := &fakeSource{name: "shifts", items: []model.Item{
		shiftItem("Ada", "Team Meeting", day.Add(9*time.Hour)),
		shiftItem("Grace", "Team Meeting", day.Add(10*time.Hour)),
	}}
	o := &Orchestrator{
		Plan: mode.Plan{Single: true, Left: mode.Column{
			Mode: mode.Events, Source: src, Aggregator: cards.ShiftAggregator{},
		}},
		LeftHeader: "Staffing",
		Now:        func() time.Time { return day.Add(10 * time.Hour) },
	}

	out, err := o.Render(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.HTML, `class="board single"`)
	assert.NotContains(t, out.HTML, "Staffing", "headers are dual-only")
	assert.NotContains(t, out.HTML, "column-header")
	assert.Equal(t, 1, strings.Count(out.HTML, `<article class="card shift">`))
	assert.Equal(t, 2, strings.Count(out.HTML, `class="now"`))
	assert.Len(t, out.Items, 2)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestOrchestratorDual(t *testing.T) {
	left := &fakeSource{name: "shifts", items: []model.Item{shiftItem("Ada", "Open", day.Add(8*time.Hour))}}
	right := &fakeSource{name: "booking-json", items: []model.Item{bookingItem("Chess", "STU 204", day.Add(18*time.Hour))}}

	o := &Orchestrator{
		Plan: mode.Plan{
			Left: mode.Column{
				Mode: mode.Labor, Source: left,
				Aggregator: cards.LaborAggregator{Icons: map[string]config.LocationIcon{"555": {Icon: "H", Abbreviation: "MH"}}},
			},
			Right: mode.Column{
				Mode: mode.MZVEvents, Source: right,
				Aggregator: cards.EventListAggregator{Options: cards.EventListOptions{RoomNumberOnly: true}},
			},
		},
		LeftHeader:  "Labor",
		RightHeader: "Events",
		Now:         func() time.Time { return day },
	}

	out, err := o.Render(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.HTML, `class="board dual"`)
	assert.Less(t, strings.Index(out.HTML, "Labor"), strings.Index(out.HTML, "Events"))
	assert.Contains(t, out.HTML, `<td class="room">204</td>`)
	require.Len(t, out.Items, 2)
	assert.Equal(t, "Open", out.Items[0].Title)
	assert.Equal(t, "Chess", out.Items[1].Title)
}

func TestOrchestratorDualFailsWhole(t *testing.T) {
	boom := &source.FetchError{Source: "booking-xml", Kind: source.KindStatus, StatusCode: 502, Err: errors.New("bad gateway")}
	o := &Orchestrator{
		Plan: mode.Plan{
			Left:  mode.Column{Mode: mode.Events, Source: &fakeSource{name: "shifts"}, Aggregator: cards.ShiftAggregator{}},
			Right: mode.Column{Mode: mode.EMSEvents, Source: &fakeSource{name: "booking-xml", err: boom}, Aggregator: cards.EventListAggregator{}},
		},
	}

	out, err := o.Render(context.Background())
	require.Error(t, err)
	assert.True(t, source.IsFetchError(err))
	assert.Empty(t, out.HTML)
	assert.Nil(t, out.Items)
}

func TestOrchestratorLaborConfigError(t *testing.T) {
	o := &Orchestrator{
		Plan: mode.Plan{Single: true, Left: mode.Column{
			Mode:       mode.Labor,
			Source:     &fakeSource{name: "shifts", items: []model.Item{shiftItem("Ada", "Open", day)}},
			Aggregator: cards.LaborAggregator{},
		}},
	}
	_, err := o.Render(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalid)
}
