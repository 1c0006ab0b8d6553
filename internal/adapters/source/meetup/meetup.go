// Package meetup is the structured-API adapter: a partner events API queried
// per city and keyword with bearer auth
package meetup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"micdrop/internal/adapters/source"
	"micdrop/internal/core/keywords"
	perr "micdrop/internal/platform/errors"
	"micdrop/internal/platform/logger"
)

const (
	baseURLDefault = "https://api.meetup.com"
	defaultTimeout = 10 * time.Second
	defaultUA      = "micdrop-ingest"
	sourceName     = "meetup"
)

// queryTerms are the free-text keywords sent to the partner API per city
var queryTerms = []string{"open mic", "comedy", "stand-up"}

// Options configures the adapter
type Options struct {
	Token     string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Adapter is the meetup source adapter
type Adapter struct {
	http *http.Client
	opts Options
	log  logger.Logger
}

// New creates the adapter with sane defaults.
// An empty token keeps the adapter disabled: the feature is opt-in
func New(o Options) *Adapter {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return &Adapter{
		http: &http.Client{Timeout: o.Timeout},
		opts: o,
		log:  *logger.Named(sourceName),
	}
}

// Name satisfies source.Adapter
func (a *Adapter) Name() string { return sourceName }

// Enabled satisfies source.Adapter
func (a *Adapter) Enabled() bool { return strings.TrimSpace(a.opts.Token) != "" }

// event is the partner wire shape we care about
type event struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Link        string `json:"link"`
	TimeMs      int64  `json:"time"` // epoch millis
	Venue       struct {
		Name     string `json:"name"`
		Address1 string `json:"address_1"`
		City     string `json:"city"`
		State    string `json:"state"`
	} `json:"venue"`
}

type eventsResponse struct {
	Events []event `json:"events"`
}

// Fetch queries the partner API per city x keyword and maps events to candidates.
// The partner id is trusted as SourceID so dedupe takes the natural-key path
func (a *Adapter) Fetch(ctx context.Context, args source.FetchArgs) (source.Batch, error) {
	if !a.Enabled() {
		return source.Batch{}, nil
	}

	var out source.Batch
	seen := map[string]bool{}
	for _, city := range args.Cities {
		for _, term := range queryTerms {
			evs, err := a.search(ctx, city, term, args)
			if err != nil {
				return source.Batch{}, err
			}
			for _, ev := range evs {
				if ev.ID == "" || seen[ev.ID] {
					continue
				}
				seen[ev.ID] = true
				if !keywords.Matches(ev.Name, ev.Description) {
					continue
				}
				out.Candidates = append(out.Candidates, mapEvent(ev, city))
			}
		}
	}
	return out, nil
}

func (a *Adapter) search(ctx context.Context, city, term string, args source.FetchArgs) ([]event, error) {
	q := url.Values{}
	q.Set("text", term)
	// "Austin, TX" style entries carry the state as a separate param
	if name, state, ok := strings.Cut(city, ","); ok {
		q.Set("city", strings.TrimSpace(name))
		q.Set("state", strings.TrimSpace(state))
	} else {
		q.Set("city", city)
	}
	if args.RadiusMiles > 0 {
		q.Set("radius", fmt.Sprintf("%d", args.RadiusMiles))
	}
	if args.WindowDays > 0 {
		end := args.Now.AddDate(0, 0, args.WindowDays)
		q.Set("end_date_range", end.UTC().Format("2006-01-02T15:04:05"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.opts.BaseURL+"/find/upcoming_events?"+q.Encode(), nil)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnknown, "meetup new request failed")
	}
	req.Header.Set("User-Agent", a.opts.UserAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.opts.Token)

	resp, err := a.http.Do(req)
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "meetup fetch failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			a.log.Error().Err(cerr).Msg("meetup close body failed")
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, perr.Newf(perr.ErrorCodeTooManyRequests, "meetup rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, perr.Unavailablef("meetup status %d", resp.StatusCode)
	}

	var body eventsResponse
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "meetup read body failed")
	}
	if err := json.Unmarshal(b, &body); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "meetup decode failed")
	}
	return body.Events, nil
}

func mapEvent(ev event, city string) source.RawCandidate {
	c := source.RawCandidate{
		Source:      sourceName,
		SourceID:    ev.ID,
		Title:       ev.Name,
		Description: ev.Description,
		VenueName:   ev.Venue.Name,
		Address:     ev.Venue.Address1,
		City:        ev.Venue.City,
		Region:      ev.Venue.State,
		URL:         ev.Link,
	}
	if c.City == "" {
		c.City = city
	}
	if ev.TimeMs > 0 {
		t := time.UnixMilli(ev.TimeMs).UTC()
		c.StartUTC = &t
	}
	return c
}
