package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	appLog "schedboard/internal/log"
	"schedboard/internal/model"
)

// ShiftsOptions configures the shift-management adapter.
type ShiftsOptions struct {
	BaseURL    string
	Token      string
	LocationID string

	// Separator splits an event title from private notes in a shift's notes
	// field. RequireWhitespace expects " <sep> ".
	Separator         string
	RequireWhitespace bool

	Location *time.Location
	Client   *http.Client
	Now      func() time.Time
}

// Shifts reads scheduled shifts and resolves their users and sites.
type Shifts struct {
	opts ShiftsOptions
}

// NewShifts builds the shift adapter. Nil Location, Client, or Now fall back
// to time.Local, a default client, and time.Now.
func NewShifts(opts ShiftsOptions) *Shifts {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Client == nil {
		opts.Client = NewHTTPClient()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Shifts{opts: opts}
}

func (s *Shifts) Name() string { return "shifts" }

// shiftsResponse is the subset of the shifts endpoint payload we read.
type shiftsResponse struct {
	Shifts []shiftDTO `json:"shifts"`
	Users  []userDTO  `json:"users"`
	Sites  []siteDTO  `json:"sites"`
}

type shiftDTO struct {
	ID         int64  `json:"id"`
	UserID     int64  `json:"user_id"`
	SiteID     int64  `json:"site_id"`
	LocationID int64  `json:"location_id"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	Notes      string `json:"notes"`
}

type userDTO struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	EmployeeCode string `json:"employee_code"`
}

type siteDTO struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

const shiftsQueryLayout = "2006-01-02 15:04:05"

// FetchSchedule requests shifts from now through the end of the day
// lookaheadDays out.
func (s *Shifts) FetchSchedule(ctx context.Context, lookaheadDays int) ([]model.Item, error) {
	now := s.opts.Now().In(s.opts.Location)

	q := url.Values{}
	q.Set("location_id", s.opts.LocationID)
	q.Set("start", now.Format(shiftsQueryLayout))
	q.Set("end", endOfDay(now.AddDate(0, 0, lookaheadDays)).Format(shiftsQueryLayout))

	req, err := newRequest(ctx, http.MethodGet, s.opts.BaseURL, "shifts?"+q.Encode(), nil)
	if err != nil {
		return nil, &FetchError{Source: s.Name(), Kind: KindTransport, Err: err}
	}
	req.Header.Set("W-Token", s.opts.Token)
	req.Header.Set("Accept", "application/json")

	body, err := do(s.opts.Client, s.Name(), req)
	if err != nil {
		return nil, err
	}

	var payload shiftsResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &FetchError{Source: s.Name(), Kind: KindDecode, Err: err}
	}
	return s.normalize(payload), nil
}

// normalize converts a decoded payload into sorted items, dropping shifts
// whose user, site, or times cannot be resolved.
func (s *Shifts) normalize(payload shiftsResponse) []model.Item {
	users := make(map[int64]userDTO, len(payload.Users))
	for _, u := range payload.Users {
		users[u.ID] = u
	}
	sites := make(map[int64]siteDTO, len(payload.Sites))
	for _, st := range payload.Sites {
		sites[st.ID] = st
	}

	items := make([]model.Item, 0, len(payload.Shifts))
	dropped := 0
	for _, sh := range payload.Shifts {
		user, okUser := users[sh.UserID]
		site, okSite := sites[sh.SiteID]
		if !okUser || !okSite {
			dropped++
			continue
		}
		start, err := parseTime(sh.StartTime, s.opts.Location)
		if err != nil {
			dropped++
			continue
		}
		end, err := parseTime(sh.EndTime, s.opts.Location)
		if err != nil {
			dropped++
			continue
		}

		title := cleanTitle(ParseTitle(sh.Notes, s.opts.Separator, s.opts.RequireWhitespace))
		siteID := strconv.FormatInt(sh.SiteID, 10)

		items = append(items, model.Item{
			IdentityKey: strings.Join([]string{siteID, title, model.DayKey(start)}, "\n"),
			DateLabel:   model.WeekdayDate(start),
			Title:       title,
			Location:    site.Name,
			LocationID:  strconv.FormatInt(sh.LocationID, 10),
			Start:       start,
			End:         end,
			Person: &model.Person{
				Name:       strings.TrimSpace(user.FirstName + " " + user.LastName),
				ExternalID: user.EmployeeCode,
			},
		})
	}

	if dropped > 0 {
		appLog.Debug("shifts: dropped unresolved records", "dropped", dropped, "kept", len(items))
	}
	sortItems(items)
	return items
}

// ParseTitle returns the part of notes before the first separator, trimmed.
// With requireWhitespace the separator only matches as " <sep> ". Notes
// without a separator are returned whole (trimmed); an empty separator
// disables splitting.
func ParseTitle(notes, separator string, requireWhitespace bool) string {
	if separator == "" {
		return strings.TrimSpace(notes)
	}
	if requireWhitespace {
		separator = " " + separator + " "
	}
	title, _, _ := strings.Cut(notes, separator)
	return strings.TrimSpace(title)
}
