package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalid marks operator misconfiguration. Anything wrapping it is fatal:
// the board refuses to start (or stops) rather than backing off.
var ErrInvalid = errors.New("invalid configuration")

// Invalidf builds an error wrapping ErrInvalid.
func Invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// ParseIDList parses a comma separated list of integers. An empty string
// yields a nil slice; any non-integer element is a configuration error.
func ParseIDList(field, s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	ids := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, Invalidf("%s: %q is not an integer id", field, p)
		}
		ids = append(ids, n)
	}
	return ids, nil
}

// Validate checks everything that can be checked without knowing the mode
// table. Render modes are checked by mode.Resolver.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return Invalidf("timezone %q: %v", c.Timezone, err)
	}
	if c.Refresh.MaxSeconds < c.Refresh.InitialSeconds {
		return Invalidf("refresh.max_seconds (%d) is below refresh.initial_seconds (%d)",
			c.Refresh.MaxSeconds, c.Refresh.InitialSeconds)
	}

	lists := []struct {
		field string
		value string
	}{
		{"booking_xml.buildings", c.BookingXML.Buildings},
		{"booking_xml.statuses", c.BookingXML.Statuses},
		{"booking_xml.event_types", c.BookingXML.EventTypes},
		{"booking_json.buildings", c.BookingJSON.Buildings},
		{"booking_json.rooms", c.BookingJSON.Rooms},
		{"booking_json.statuses", c.BookingJSON.Statuses},
		{"booking_json.event_types", c.BookingJSON.EventTypes},
	}
	for _, l := range lists {
		if _, err := ParseIDList(l.field, l.value); err != nil {
			return err
		}
	}

	for id, loc := range c.Locations {
		if loc.Abbreviation == "" && loc.Icon == "" {
			return Invalidf("locations[%s]: needs an icon or abbreviation", id)
		}
	}
	return nil
}
