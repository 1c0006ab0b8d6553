// Package websearch is the search-engine+HTML adapter: site-restricted search
// hits on allowlisted domains, enriched by a bounded best-effort page fetch
package websearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"micdrop/internal/adapters/source"
	"micdrop/internal/core/keywords"
	"micdrop/internal/core/normalize"
	perr "micdrop/internal/platform/errors"
	"micdrop/internal/platform/logger"
)

const (
	baseURLDefault = "https://www.googleapis.com/customsearch/v1"
	defaultTimeout = 10 * time.Second
	defaultUA      = "micdrop-ingest"
	defaultPageCap = 3
	sourceName     = "websearch"
)

// queryTerms are the search keywords combined with each city and domain
var queryTerms = []string{"open mic", "comedy open mic"}

// Policy is the slice of the allowlist the adapter consults
type Policy interface {
	EnabledDomains() []string
	IsAllowedURL(raw string) bool
	PathLooksRelevant(path string) bool
}

// Options configures the adapter
type Options struct {
	APIKey   string
	EngineID string
	BaseURL  string
	Timeout  time.Duration

	// PageCap bounds next-page cursor follows per task
	PageCap int

	// Concurrency bounds in-flight external fetches. The politeness default
	// is 1: serial crawling keeps us under anti-bot thresholds
	Concurrency int

	// QPS paces requests on top of the worker bound; 0 disables pacing
	QPS float64
}

// Adapter is the websearch source adapter
type Adapter struct {
	http    *http.Client
	opts    Options
	policy  Policy
	limiter *rate.Limiter
	log     logger.Logger
}

// New creates the adapter; missing credentials keep it disabled
func New(o Options, policy Policy) *Adapter {
	if o.BaseURL == "" {
		o.BaseURL = baseURLDefault
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.PageCap <= 0 {
		o.PageCap = defaultPageCap
	}
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if o.QPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(o.QPS), 1)
	}
	return &Adapter{
		http:    &http.Client{Timeout: o.Timeout},
		opts:    o,
		policy:  policy,
		limiter: limiter,
		log:     *logger.Named(sourceName),
	}
}

// Name satisfies source.Adapter
func (a *Adapter) Name() string { return sourceName }

// Enabled satisfies source.Adapter
func (a *Adapter) Enabled() bool {
	return strings.TrimSpace(a.opts.APIKey) != "" && strings.TrimSpace(a.opts.EngineID) != ""
}

// Task is one city x keyword x domain search unit
type Task struct {
	City    string
	Keyword string
	Domain  string
}

// FlattenTasks expands the nested loops into an explicit task list so the
// worker bound is a first-class, testable value
func FlattenTasks(cities, terms, domains []string) []Task {
	out := make([]Task, 0, len(cities)*len(terms)*len(domains))
	for _, c := range cities {
		for _, k := range terms {
			for _, d := range domains {
				out = append(out, Task{City: c, Keyword: k, Domain: d})
			}
		}
	}
	return out
}

// searchItem is the wire shape of one search result
type searchItem struct {
	Link    string `json:"link"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

type searchResponse struct {
	Items   []searchItem `json:"items"`
	Queries struct {
		NextPage []struct {
			StartIndex int `json:"startIndex"`
		} `json:"nextPage"`
	} `json:"queries"`
}

// Fetch runs the flattened task list through a bounded worker pool,
// enriching relevant hits with a best-effort page parse
func (a *Adapter) Fetch(ctx context.Context, args source.FetchArgs) (source.Batch, error) {
	if !a.Enabled() {
		return source.Batch{}, nil
	}

	tasks := FlattenTasks(args.Cities, queryTerms, a.policy.EnabledDomains())

	var (
		mu       sync.Mutex
		out      source.Batch
		firstErr error
	)
	sem := make(chan struct{}, a.opts.Concurrency)
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		sem <- struct{}{}
		go func(tk Task) {
			defer wg.Done()
			defer func() { <-sem }()

			cands, leads, err := a.runTask(ctx, tk)
			mu.Lock()
			defer mu.Unlock()
			if err != nil && firstErr == nil {
				firstErr = err
				return
			}
			out.Candidates = append(out.Candidates, cands...)
			out.Leads = append(out.Leads, leads...)
		}(task)
	}
	wg.Wait()

	if firstErr != nil {
		return source.Batch{}, firstErr
	}
	return out, nil
}

func (a *Adapter) runTask(ctx context.Context, tk Task) ([]source.RawCandidate, []source.RawLead, error) {
	var cands []source.RawCandidate
	var leads []source.RawLead

	start := 1
	for page := 0; page < a.opts.PageCap; page++ {
		resp, err := a.search(ctx, tk, start)
		if err != nil {
			return nil, nil, err
		}

		for _, it := range resp.Items {
			if !a.policy.IsAllowedURL(it.Link) {
				continue
			}
			// every allowlisted hit feeds the lead pipeline
			rawItem, _ := json.Marshal(it)
			leads = append(leads, source.RawLead{
				Source:  sourceName,
				URL:     it.Link,
				Title:   it.Title,
				Snippet: it.Snippet,
				Raw:     string(rawItem),
			})

			cand := a.buildCandidate(ctx, tk, it)
			if !keywords.Matches(cand.Title, cand.Description) {
				continue
			}
			cands = append(cands, cand)
		}

		if len(resp.Queries.NextPage) == 0 {
			break
		}
		start = resp.Queries.NextPage[0].StartIndex
		if start <= 1 {
			break
		}
	}
	return cands, leads, nil
}

// buildCandidate maps a search hit to a raw candidate, enriching from the
// page HTML when the hit looks like an actual event page
func (a *Adapter) buildCandidate(ctx context.Context, tk Task, it searchItem) source.RawCandidate {
	cand := source.RawCandidate{
		Source:      sourceName,
		Title:       it.Title,
		Description: it.Snippet,
		City:        tk.City,
		URL:         it.Link,
	}

	if !a.shouldEnrich(it) {
		return cand
	}

	info, err := a.fetchPage(ctx, it.Link)
	if err != nil {
		// enrichment is best-effort: a fetch or parse failure never blocks
		// emission of the base candidate
		a.log.Debug().Str("url", it.Link).Err(err).Msg("page enrichment skipped")
		return cand
	}

	if info.Title != "" {
		cand.Title = info.Title
	}
	cand.DayOfWeek = info.DayOfWeek
	cand.TimeText = info.TimeText
	cand.VenueName = info.Venue
	cand.Address = info.Address
	cand.SignupURL = info.SignupURL
	return cand
}

func (a *Adapter) shouldEnrich(it searchItem) bool {
	u, err := url.Parse(it.Link)
	if err == nil && a.policy.PathLooksRelevant(u.Path) {
		return true
	}
	if _, ok := normalize.ExtractDayOfWeek(it.Snippet); ok {
		return true
	}
	if _, ok := normalize.ExtractClockTime(it.Snippet); ok {
		return true
	}
	return false
}

func (a *Adapter) search(ctx context.Context, tk Task, start int) (searchResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return searchResponse{}, err
	}

	q := url.Values{}
	q.Set("key", a.opts.APIKey)
	q.Set("cx", a.opts.EngineID)
	q.Set("q", fmt.Sprintf("%s %s site:%s", tk.Keyword, tk.City, tk.Domain))
	if start > 1 {
		q.Set("start", fmt.Sprintf("%d", start))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.opts.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return searchResponse{}, perr.Wrapf(err, perr.ErrorCodeUnknown, "websearch new request failed")
	}
	req.Header.Set("User-Agent", defaultUA)
	req.Header.Set("Accept", "application/json")

	resp, err := a.http.Do(req)
	if err != nil {
		return searchResponse{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "websearch fetch failed")
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			a.log.Error().Err(cerr).Msg("websearch close body failed")
		}
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		return searchResponse{}, perr.Newf(perr.ErrorCodeTooManyRequests, "websearch rate limited")
	}
	if resp.StatusCode != http.StatusOK {
		return searchResponse{}, perr.Unavailablef("websearch status %d", resp.StatusCode)
	}

	var out searchResponse
	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return searchResponse{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "websearch read body failed")
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return searchResponse{}, perr.Wrapf(err, perr.ErrorCodeJSON, "websearch decode failed")
	}
	return out, nil
}

// fetchPage downloads the hit with a bounded timeout and extracts event facts
func (a *Adapter) fetchPage(ctx context.Context, rawURL string) (PageInfo, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return PageInfo{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return PageInfo{}, err
	}
	req.Header.Set("User-Agent", defaultUA)

	resp, err := a.http.Do(req)
	if err != nil {
		return PageInfo{}, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return PageInfo{}, fmt.Errorf("page status %d", resp.StatusCode)
	}
	return ExtractPage(io.LimitReader(resp.Body, 2<<20))
}
