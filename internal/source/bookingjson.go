package source

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	appLog "schedboard/internal/log"
	"schedboard/internal/model"
)

// RoomFallback labels events whose room description has no recognizable
// room code.
const RoomFallback = "other"

// roomCodePattern matches a building code and room number, e.g. "SCI 1042".
var roomCodePattern = regexp.MustCompile(`[A-Z]{3} [A-Za-z0-9]{3,4}`)

// BookingJSONOptions configures the JSON room-booking adapter. Rooms and
// EventTypes may be nil, meaning "no filter".
type BookingJSONOptions struct {
	BaseURL string
	APIKey  string

	Buildings  []int
	Rooms      []int
	Statuses   []int
	EventTypes []int

	Location *time.Location
	Client   *http.Client
	Now      func() time.Time
}

// BookingJSON reads public events from the JSON booking API.
type BookingJSON struct {
	opts BookingJSONOptions
}

// NewBookingJSON builds the booking JSON adapter.
func NewBookingJSON(opts BookingJSONOptions) *BookingJSON {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Client == nil {
		opts.Client = NewHTTPClient()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BookingJSON{opts: opts}
}

func (b *BookingJSON) Name() string { return "booking-json" }

// eventsRequest is the filter body of PublicEvent/getevents. The fixed
// fields are sent with the values the upstream expects for a public view.
type eventsRequest struct {
	Start                    string  `json:"start"`
	End                      string  `json:"end"`
	BuildingIDs              []int   `json:"buildingIds"`
	RoomIDs                  []int   `json:"roomIds"`
	EventTypeIDs             []int   `json:"eventTypeIds"`
	StatusIDs                []int   `json:"statusIds"`
	ResourceIDs              []int   `json:"resourceIds"`
	BookingIDs               []int   `json:"bookingIds"`
	ContactID                int     `json:"contactId"`
	OrganizationID           int     `json:"organizationId"`
	ExplodeComboRooms        bool    `json:"explodeComboRooms"`
	IncludeRelatedRooms      bool    `json:"includeRelatedRooms"`
	MinDateChanged           *string `json:"minDateChanged"`
	IncludeEventCoordinators bool    `json:"includeEventCoordinators"`
}

type eventDTO struct {
	EventName       string `json:"eventName"`
	RoomDescription string `json:"roomDescription"`
	DateTimeStart   string `json:"dateTimeStart"`
	DateTimeEnd     string `json:"dateTimeEnd"`
	SetupMinutes    int    `json:"setupMinutes"`
	TeardownMinutes int    `json:"teardownMinutes"`
	StatusID        int    `json:"statusId"`
}

func (b *BookingJSON) requestBody(start, end time.Time) ([]byte, error) {
	return json.Marshal(eventsRequest{
		Start:        start.Format(time.RFC3339),
		End:          end.Format(time.RFC3339),
		BuildingIDs:  b.opts.Buildings,
		RoomIDs:      b.opts.Rooms,
		EventTypeIDs: b.opts.EventTypes,
		StatusIDs:    b.opts.Statuses,
		ResourceIDs:  []int{},
		BookingIDs:   []int{},
	})
}

// FetchSchedule posts the filter for [now, end of day now+lookaheadDays].
func (b *BookingJSON) FetchSchedule(ctx context.Context, lookaheadDays int) ([]model.Item, error) {
	now := b.opts.Now().In(b.opts.Location)

	payload, err := b.requestBody(now, endOfDay(now.AddDate(0, 0, lookaheadDays)))
	if err != nil {
		return nil, &FetchError{Source: b.Name(), Kind: KindTransport, Err: err}
	}

	req, err := newRequest(ctx, http.MethodPost, b.opts.BaseURL, "PublicEvent/getevents", bytes.NewReader(payload))
	if err != nil {
		return nil, &FetchError{Source: b.Name(), Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-Key", b.opts.APIKey)

	body, err := do(b.opts.Client, b.Name(), req)
	if err != nil {
		return nil, err
	}

	var events []eventDTO
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, &FetchError{Source: b.Name(), Kind: KindDecode, Err: err}
	}
	return b.normalize(events), nil
}

func (b *BookingJSON) normalize(events []eventDTO) []model.Item {
	items := make([]model.Item, 0, len(events))
	dropped := 0
	for _, ev := range events {
		start, err := parseTime(ev.DateTimeStart, b.opts.Location)
		if err != nil {
			dropped++
			continue
		}
		end, err := parseTime(ev.DateTimeEnd, b.opts.Location)
		if err != nil {
			dropped++
			continue
		}

		title := cleanTitle(ev.EventName)
		room := RoomCode(ev.RoomDescription)
		it := model.Item{
			IdentityKey: strings.Join([]string{title, room, model.DayKey(start)}, "\n"),
			DateLabel:   model.ShortDate(start),
			Title:       title,
			Location:    room,
			Start:       start,
			End:         end,
			SetupStart:  start.Add(-time.Duration(ev.SetupMinutes) * time.Minute),
			TeardownEnd: end.Add(time.Duration(ev.TeardownMinutes) * time.Minute),
		}
		if ev.StatusID != 0 {
			it.StatusID = strconv.Itoa(ev.StatusID)
		}
		items = append(items, it)
	}

	if dropped > 0 {
		appLog.Debug("booking-json: dropped events with bad times", "dropped", dropped, "kept", len(items))
	}
	sortItems(items)
	return items
}

// RoomCode extracts the short room code from a free-text room description,
// or RoomFallback when none is present.
func RoomCode(description string) string {
	if m := roomCodePattern.FindString(description); m != "" {
		return m
	}
	return RoomFallback
}
