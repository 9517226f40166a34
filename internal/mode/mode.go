package mode

import (
	"strings"

	"schedboard/internal/cards"
	"schedboard/internal/config"
	"schedboard/internal/source"
)

// Mode is what a display column shows.
type Mode string

const (
	// Labor: condensed per-day roster from the shift API.
	Labor Mode = "LABOR"
	// Events: per-event staffing from the shift API.
	Events Mode = "EVENTS"
	// EMSEvents: per-day booking list from the SOAP/XML booking API.
	EMSEvents Mode = "EMS-EVENTS"
	// MZVEvents: per-day booking list from the JSON booking API.
	MZVEvents Mode = "MZV-EVENTS"
)

// SourceKind names an upstream adapter.
type SourceKind string

const (
	KindShifts      SourceKind = "shifts"
	KindBookingXML  SourceKind = "booking-xml"
	KindBookingJSON SourceKind = "booking-json"
)

// Acceptable is the closed set of modes.
var Acceptable = []Mode{Labor, Events, EMSEvents, MZVEvents}

// staticSources is the fixed source behind each mode. A configured mapping
// may restate it but never change it.
var staticSources = map[Mode]SourceKind{
	Labor:     KindShifts,
	Events:    KindShifts,
	EMSEvents: KindBookingXML,
	MZVEvents: KindBookingJSON,
}

// Column is a resolved (adapter, aggregator) pair.
type Column struct {
	Mode       Mode
	Source     source.Source
	Lookahead  int
	Aggregator cards.Aggregator
}

// Plan is the resolved board layout. When Single is set only Left is used.
type Plan struct {
	Single bool
	Left   Column
	Right  Column
}

// Resolver maps configured mode strings to columns.
type Resolver struct {
	cfg        *config.Config
	acceptable map[Mode]bool
	mapping    map[Mode]SourceKind
	sources    map[SourceKind]source.Source
}

// NewResolver builds a resolver over the given adapters. The mode->source
// mapping starts from the static table and takes cfg.ModeSources on top.
func NewResolver(cfg *config.Config, sources map[SourceKind]source.Source) *Resolver {
	acceptable := make(map[Mode]bool, len(Acceptable))
	for _, m := range Acceptable {
		acceptable[m] = true
	}

	mapping := make(map[Mode]SourceKind, len(staticSources))
	for m, k := range staticSources {
		mapping[m] = k
	}
	for m, k := range cfg.ModeSources {
		mapping[Mode(strings.TrimSpace(m))] = SourceKind(strings.TrimSpace(k))
	}

	return &Resolver{
		cfg:        cfg,
		acceptable: acceptable,
		mapping:    mapping,
		sources:    sources,
	}
}

// Resolve returns the column for one configured mode string.
func (r *Resolver) Resolve(setting string) (Column, error) {
	m := Mode(strings.TrimSpace(setting))
	if !r.acceptable[m] {
		return Column{}, config.Invalidf("render mode %q is not one of %s", setting, acceptableList())
	}

	kind, ok := r.mapping[m]
	if !ok || kind != staticSources[m] {
		return Column{}, config.Invalidf("render mode %q is mapped to source %q, want %q", m, kind, staticSources[m])
	}

	src, ok := r.sources[kind]
	if !ok || src == nil {
		return Column{}, config.Invalidf("render mode %q needs source %q, which is not configured", m, kind)
	}

	col := Column{Mode: m, Source: src}
	narrow := r.cfg.Display.Narrow
	switch m {
	case Labor:
		col.Lookahead = r.cfg.Shifts.LookaheadDays
		col.Aggregator = cards.LaborAggregator{Icons: r.cfg.Locations}
	case Events:
		col.Lookahead = r.cfg.Shifts.LookaheadDays
		col.Aggregator = cards.ShiftAggregator{}
	case EMSEvents:
		col.Lookahead = r.cfg.BookingXML.LookaheadDays
		col.Aggregator = cards.EventListAggregator{Options: cards.EventListOptions{Nested: narrow}}
	case MZVEvents:
		col.Lookahead = r.cfg.BookingJSON.LookaheadDays
		col.Aggregator = cards.EventListAggregator{Options: cards.EventListOptions{RoomNumberOnly: true, Nested: narrow}}
	}
	return col, nil
}

// Plan resolves both columns. Both settings are validated even when they
// are identical; identical settings give a single-column plan.
func (r *Resolver) Plan(left, right string) (Plan, error) {
	l, err := r.Resolve(left)
	if err != nil {
		return Plan{}, err
	}
	rc, err := r.Resolve(right)
	if err != nil {
		return Plan{}, err
	}
	if l.Mode == rc.Mode {
		return Plan{Single: true, Left: l}, nil
	}
	return Plan{Left: l, Right: rc}, nil
}

func acceptableList() string {
	names := make([]string, len(Acceptable))
	for i, m := range Acceptable {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}
