package source

import (
	"bytes"
	"context"
	"encoding/xml"
	"net/http"
	"strings"
	"time"

	appLog "schedboard/internal/log"
	"schedboard/internal/model"
)

// BookingXMLOptions configures the SOAP/XML room-booking adapter.
type BookingXMLOptions struct {
	BaseURL  string
	Username string
	Password string

	Buildings  []int
	Statuses   []int
	EventTypes []int

	Location *time.Location
	Client   *http.Client
	Now      func() time.Time
}

// BookingXML reads room bookings from the SOAP GetBookings call.
type BookingXML struct {
	opts BookingXMLOptions
}

// NewBookingXML builds the booking XML adapter.
func NewBookingXML(opts BookingXMLOptions) *BookingXML {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Client == nil {
		opts.Client = NewHTTPClient()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &BookingXML{opts: opts}
}

func (b *BookingXML) Name() string { return "booking-xml" }

const (
	soapNamespace      = "http://schemas.xmlsoap.org/soap/envelope/"
	bookingsNamespace  = "http://DEA.EMS.API.Web.Service/"
	bookingsResultNode = "GetBookingsResult"
)

type soapEnvelope struct {
	XMLName xml.Name `xml:"soap:Envelope"`
	XSI     string   `xml:"xmlns:xsi,attr"`
	XSD     string   `xml:"xmlns:xsd,attr"`
	Soap    string   `xml:"xmlns:soap,attr"`
	Body    soapBody `xml:"soap:Body"`
}

type soapBody struct {
	Request getBookingsRequest `xml:"GetBookings"`
}

type getBookingsRequest struct {
	XMLNS                   string `xml:"xmlns,attr"`
	UserName                string `xml:"UserName"`
	Password                string `xml:"Password"`
	StartDate               string `xml:"StartDate"`
	EndDate                 string `xml:"EndDate"`
	Buildings               []int  `xml:"Buildings>int"`
	Statuses                []int  `xml:"Statuses>int"`
	EventTypes              []int  `xml:"EventTypes>int"`
	ViewComboRoomComponents bool   `xml:"ViewComboRoomComponents"`
}

// requestBody renders the GetBookings SOAP request for [start, end].
func (b *BookingXML) requestBody(start, end time.Time) ([]byte, error) {
	env := soapEnvelope{
		XSI:  "http://www.w3.org/2001/XMLSchema-instance",
		XSD:  "http://www.w3.org/2001/XMLSchema",
		Soap: soapNamespace,
		Body: soapBody{Request: getBookingsRequest{
			XMLNS:      bookingsNamespace,
			UserName:   b.opts.Username,
			Password:   b.opts.Password,
			StartDate:  start.Format(time.RFC3339),
			EndDate:    end.Format(time.RFC3339),
			Buildings:  b.opts.Buildings,
			Statuses:   b.opts.Statuses,
			EventTypes: b.opts.EventTypes,
		}},
	}
	out, err := xml.Marshal(env)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), out...), nil
}

// FetchSchedule requests bookings for [now, now+lookaheadDays].
func (b *BookingXML) FetchSchedule(ctx context.Context, lookaheadDays int) ([]model.Item, error) {
	now := b.opts.Now().In(b.opts.Location)

	payload, err := b.requestBody(now, now.AddDate(0, 0, lookaheadDays))
	if err != nil {
		return nil, &FetchError{Source: b.Name(), Kind: KindTransport, Err: err}
	}

	req, err := newRequest(ctx, http.MethodPost, b.opts.BaseURL, "Service.asmx", bytes.NewReader(payload))
	if err != nil {
		return nil, &FetchError{Source: b.Name(), Kind: KindTransport, Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", bookingsNamespace+"GetBookings")

	body, err := do(b.opts.Client, b.Name(), req)
	if err != nil {
		return nil, err
	}
	return b.parse(body)
}

// parse runs both decode stages and normalizes complete bookings.
func (b *BookingXML) parse(body []byte) ([]model.Item, error) {
	inner, err := DecodeEnvelope(body, bookingsResultNode)
	if err != nil {
		return nil, &FetchError{Source: b.Name(), Kind: KindDecode, Err: err}
	}
	nodes, err := DecodeBookings(inner)
	if err != nil {
		return nil, &FetchError{Source: b.Name(), Kind: KindDecode, Err: err}
	}

	items := make([]model.Item, 0, len(nodes))
	dropped := 0
	for _, n := range nodes {
		it, ok := b.normalize(n)
		if !ok {
			dropped++
			continue
		}
		items = append(items, it)
	}

	if dropped > 0 {
		appLog.Debug("booking-xml: dropped incomplete bookings", "dropped", dropped, "kept", len(items))
	}
	sortItems(items)
	return items, nil
}

func (b *BookingXML) normalize(n BookingNode) (model.Item, bool) {
	if !n.complete() {
		return model.Item{}, false
	}

	loc := b.opts.Location
	bookStart, err1 := parseTime(*n.TimeBookingStart, loc)
	bookEnd, err2 := parseTime(*n.TimeBookingEnd, loc)
	eventStart, err3 := parseTime(*n.TimeEventStart, loc)
	eventEnd, err4 := parseTime(*n.TimeEventEnd, loc)
	for _, err := range []error{err1, err2, err3, err4} {
		if err != nil {
			return model.Item{}, false
		}
	}

	label := model.LongDate(bookStart)
	it := model.Item{
		IdentityKey: label,
		DateLabel:   label,
		Title:       cleanTitle(*n.EventName),
		Location:    strings.TrimSpace(*n.RoomCode),
		Start:       eventStart,
		End:         eventEnd,
		SetupStart:  bookStart,
		TeardownEnd: bookEnd,
	}
	if n.StatusID != nil {
		it.StatusID = strings.TrimSpace(*n.StatusID)
	}
	return it, true
}
