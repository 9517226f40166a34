package mode

import (
	"net/http"
	"time"

	"schedboard/internal/config"
	"schedboard/internal/source"
)

// BuildSources constructs every adapter from cfg. Id lists are parsed here,
// so a malformed list surfaces as a config.ErrInvalid error at startup.
func BuildSources(cfg *config.Config, loc *time.Location, client *http.Client) (map[SourceKind]source.Source, error) {
	xmlBuildings, err := config.ParseIDList("booking_xml.buildings", cfg.BookingXML.Buildings)
	if err != nil {
		return nil, err
	}
	xmlStatuses, err := config.ParseIDList("booking_xml.statuses", cfg.BookingXML.Statuses)
	if err != nil {
		return nil, err
	}
	xmlEventTypes, err := config.ParseIDList("booking_xml.event_types", cfg.BookingXML.EventTypes)
	if err != nil {
		return nil, err
	}

	jsonBuildings, err := config.ParseIDList("booking_json.buildings", cfg.BookingJSON.Buildings)
	if err != nil {
		return nil, err
	}
	jsonRooms, err := config.ParseIDList("booking_json.rooms", cfg.BookingJSON.Rooms)
	if err != nil {
		return nil, err
	}
	jsonStatuses, err := config.ParseIDList("booking_json.statuses", cfg.BookingJSON.Statuses)
	if err != nil {
		return nil, err
	}
	jsonEventTypes, err := config.ParseIDList("booking_json.event_types", cfg.BookingJSON.EventTypes)
	if err != nil {
		return nil, err
	}

	return map[SourceKind]source.Source{
		KindShifts: source.NewShifts(source.ShiftsOptions{
			BaseURL:           cfg.Shifts.BaseURL,
			Token:             cfg.Shifts.Token,
			LocationID:        cfg.Shifts.LocationID,
			Separator:         cfg.Notes.Separator,
			RequireWhitespace: cfg.Notes.RequireWhitespace,
			Location:          loc,
			Client:            client,
		}),
		KindBookingXML: source.NewBookingXML(source.BookingXMLOptions{
			BaseURL:    cfg.BookingXML.BaseURL,
			Username:   cfg.BookingXML.Username,
			Password:   cfg.BookingXML.Password,
			Buildings:  xmlBuildings,
			Statuses:   xmlStatuses,
			EventTypes: xmlEventTypes,
			Location:   loc,
			Client:     client,
		}),
		KindBookingJSON: source.NewBookingJSON(source.BookingJSONOptions{
			BaseURL:    cfg.BookingJSON.BaseURL,
			APIKey:     cfg.BookingJSON.APIKey,
			Buildings:  jsonBuildings,
			Rooms:      jsonRooms,
			Statuses:   jsonStatuses,
			EventTypes: jsonEventTypes,
			Location:   loc,
			Client:     client,
		}),
	}, nil
}
