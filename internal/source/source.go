package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	appLog "schedboard/internal/log"
	"schedboard/internal/model"
)

// Source fetches one upstream schedule and normalizes it. Implementations
// return items sorted by start time and drop malformed records instead of
// failing on them. A successful fetch with no records returns an empty slice
// and a nil error.
type Source interface {
	Name() string
	FetchSchedule(ctx context.Context, lookaheadDays int) ([]model.Item, error)
}

// Kind classifies a failed fetch.
type Kind string

const (
	// KindTransport: the request never produced a response.
	KindTransport Kind = "transport"
	// KindStatus: the upstream answered with a non-2xx status.
	KindStatus Kind = "status"
	// KindDecode: the response body could not be decoded as a whole.
	KindDecode Kind = "decode"
)

// FetchError is returned by every adapter when a whole fetch fails.
type FetchError struct {
	Source     string
	Kind       Kind
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Kind == KindStatus {
		return fmt.Sprintf("%s fetch: %s failure (HTTP %d): %v", e.Source, e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s fetch: %s failure: %v", e.Source, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err (or anything it wraps) is a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

const defaultTimeout = 30 * time.Second

// NewHTTPClient returns the client adapters use when none is injected.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// do sends req and returns the body of a 2xx response. Anything else is a
// FetchError tagged with the source name.
func do(client *http.Client, name string, req *http.Request) ([]byte, error) {
	appLog.Debug("source fetch start", "source", name, "url", redactURL(req.URL.String()))

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{Source: name, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: name, Kind: KindTransport, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{
			Source:     name,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Err:        errors.New(resp.Status),
		}
	}

	appLog.Debug("source fetch success", "source", name, "status", resp.StatusCode, "bytes", len(body))
	return body, nil
}

func newRequest(ctx context.Context, method, base, path string, body io.Reader) (*http.Request, error) {
	u := strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
	return http.NewRequestWithContext(ctx, method, u, body)
}

// sortItems orders by event start. Setup buffers do not move an item. The
// sort is stable so records with equal starts keep upstream order.
func sortItems(items []model.Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Start.Before(items[j].Start)
	})
}

// cleanTitle undoes the entity escaping some upstreams leave in names.
func cleanTitle(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "&amp;", "&"))
}

// Layouts tried, in order, for upstream timestamps. Zone-less layouts are
// interpreted in the display location.
var timeLayouts = []string{
	time.RFC1123Z,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseTime(v string, loc *time.Location) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, v, loc); err == nil {
			return t.In(loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", v)
}

// endOfDay returns the last representable instant of t's calendar day.
func endOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, 0, t.Location())
}

// redactURL hides sensitive parts of an upstream URL for logging purposes.
//
//	https://example.com/path/to/shifts?token=abcd
//	-> https://example.com/...(redacted)
func redactURL(u string) string {
	const redactedSuffix = "/...(redacted)"

	scheme := strings.Index(u, "://")
	if scheme == -1 {
		return "...(redacted)"
	}
	rest := u[scheme+3:]
	if slash := strings.IndexByte(rest, '/'); slash != -1 {
		rest = rest[:slash]
	}
	return u[:scheme+3] + rest + redactedSuffix
}
