package source

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// The booking XML service answers with a SOAP envelope whose result node
// holds the real payload as escaped text:
//
//	<GetBookingsResult>&lt;Bookings&gt;&lt;Data&gt;...&lt;/Data&gt;&lt;/Bookings&gt;</GetBookingsResult>
//
// Decoding is two explicit stages: DecodeEnvelope pulls the result node's
// text (unescaping it once), DecodeBookings parses that text as its own
// document.

// DecodeEnvelope returns the text content of the first element named
// resultNode, with surrounding whitespace removed.
func DecodeEnvelope(body []byte, resultNode string) ([]byte, error) {
	dec := newXMLDecoder(bytes.NewReader(body))
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("envelope: result node %q not found", resultNode)
		}
		if err != nil {
			return nil, fmt.Errorf("envelope: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != resultNode {
			continue
		}

		var text struct {
			Value string `xml:",chardata"`
		}
		if err := dec.DecodeElement(&text, &se); err != nil {
			return nil, fmt.Errorf("envelope: %s: %w", resultNode, err)
		}
		return []byte(strings.TrimSpace(text.Value)), nil
	}
}

// BookingNode is one <Data> element of the inner document. Pointer fields
// distinguish a missing node from an empty one.
type BookingNode struct {
	EventName        *string `xml:"EventName"`
	RoomCode         *string `xml:"RoomCode"`
	TimeBookingStart *string `xml:"TimeBookingStart"`
	TimeBookingEnd   *string `xml:"TimeBookingEnd"`
	TimeEventStart   *string `xml:"TimeEventStart"`
	TimeEventEnd     *string `xml:"TimeEventEnd"`
	StatusID         *string `xml:"StatusID"`
}

// complete reports whether every required node is present.
func (b BookingNode) complete() bool {
	for _, p := range []*string{
		b.EventName, b.RoomCode,
		b.TimeBookingStart, b.TimeBookingEnd,
		b.TimeEventStart, b.TimeEventEnd,
	} {
		if p == nil {
			return false
		}
	}
	return true
}

// DecodeBookings parses the inner document and returns every <Data>
// element, complete or not. An empty document means no bookings.
func DecodeBookings(inner []byte) ([]BookingNode, error) {
	if len(bytes.TrimSpace(inner)) == 0 {
		return nil, nil
	}

	dec := newXMLDecoder(bytes.NewReader(inner))
	var out []BookingNode
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("bookings: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Data" {
			continue
		}
		var b BookingNode
		if err := dec.DecodeElement(&b, &se); err != nil {
			return nil, fmt.Errorf("bookings: %w", err)
		}
		out = append(out, b)
	}
}

// newXMLDecoder accepts any declared charset. The inner document is already
// a decoded Go string but usually still declares encoding="utf-16".
func newXMLDecoder(r io.Reader) *xml.Decoder {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return dec
}
