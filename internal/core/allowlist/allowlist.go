// Package allowlist holds the crawl policy: which domains may be queried
// and whether their robots directives permit crawling
package allowlist

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"micdrop/internal/platform/logger"
)

// Entry is one permitted source domain
// enabled=false entries are never queried; entries are never deleted at runtime
type Entry struct {
	Domain        string
	Label         string
	Enabled       bool
	LastCheckedAt time.Time
}

// static curated table merged with operator extensions at startup
var staticEntries = []Entry{
	{Domain: "badslava.com", Label: "Badslava open mic directory", Enabled: true},
	{Domain: "openmicfinder.com", Label: "Open Mic Finder", Enabled: true},
	{Domain: "openmicnights.co.uk", Label: "Open Mic Nights UK", Enabled: true},
	{Domain: "comedymob.co.uk", Label: "Comedy Mob", Enabled: true},
	{Domain: "meetup.com", Label: "Meetup (via partner API only)", Enabled: false},
}

// relevantFragments is the substring set pathLooksRelevant matches against
var relevantFragments = []string{
	"open-mic",
	"openmic",
	"open-mike",
	"signup",
	"sign-up",
	"comedy",
	"events",
	"calendar",
}

const robotsTimeout = 10 * time.Second

// Doer is the http seam, satisfied by *http.Client
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Policy answers allowlist and crawl permission questions
type Policy struct {
	mu      sync.RWMutex
	entries []Entry
	client  Doer
	log     logger.Logger
}

// Option mutates a Policy during construction
type Option func(*Policy)

// WithClient overrides the robots.txt http client (tests)
func WithClient(c Doer) Option { return func(p *Policy) { p.client = c } }

// WithLogger sets the policy logger
func WithLogger(log logger.Logger) Option { return func(p *Policy) { p.log = log } }

// New builds a Policy from the static table plus operator supplied extra domains.
// Extensions arrive pre-split (config.MayList handles comma and semicolon)
func New(extra []string, opts ...Option) *Policy {
	p := &Policy{
		entries: append([]Entry(nil), staticEntries...),
		client:  &http.Client{Timeout: robotsTimeout},
	}
	for _, o := range opts {
		o(p)
	}
	seen := map[string]bool{}
	for _, e := range p.entries {
		seen[e.Domain] = true
	}
	for _, d := range extra {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		p.entries = append(p.entries, Entry{Domain: d, Label: "operator extension", Enabled: true})
	}
	return p
}

// Entries returns a snapshot of all entries, enabled or not
func (p *Policy) Entries() []Entry {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]Entry, len(p.entries))
	copy(out, p.entries)
	return out
}

// EnabledDomains returns the domains a run may query, in table order
func (p *Policy) EnabledDomains() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	var out []string
	for _, e := range p.entries {
		if e.Enabled {
			out = append(out, e.Domain)
		}
	}
	return out
}

// IsEnabledDomain reports whether domain is an enabled allowlist entry
func (p *Policy) IsEnabledDomain(domain string) bool {
	domain = strings.ToLower(strings.TrimSpace(domain))
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, e := range p.entries {
		if e.Enabled && e.Domain == domain {
			return true
		}
	}
	return false
}

// IsAllowedURL reports whether raw parses and its hostname falls under an enabled domain.
// Matching is by hostname suffix so subdomains of an allowlisted domain pass
func (p *Policy) IsAllowedURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return false
	}
	host := strings.ToLower(u.Hostname())
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, e := range p.entries {
		if !e.Enabled {
			continue
		}
		if host == e.Domain || strings.HasSuffix(host, "."+e.Domain) {
			return true
		}
	}
	return false
}

// PathLooksRelevant reports whether path contains one of the known fragments
func (p *Policy) PathLooksRelevant(path string) bool {
	path = strings.ToLower(path)
	for _, f := range relevantFragments {
		if strings.Contains(path, f) {
			return true
		}
	}
	return false
}

// CheckCrawlPermission fetches https://<domain>/robots.txt and decides whether crawling is polite.
// A transport failure fails closed: the domain is skipped this run and retried next cycle.
// A non-200 response fails open: sites without a robots file should not starve the crawl
func (p *Policy) CheckCrawlPermission(ctx context.Context, domain string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://"+domain+"/robots.txt", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Debug().Str("domain", domain).Err(err).Msg("robots fetch failed, skipping domain")
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	p.MarkChecked(domain)

	if resp.StatusCode != http.StatusOK {
		return true
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false
	}
	return !disallowsAll(string(body))
}

// MarkChecked records lastCheckedAt bookkeeping for domain
func (p *Policy) MarkChecked(domain string) {
	domain = strings.ToLower(strings.TrimSpace(domain))
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.entries {
		if p.entries[i].Domain == domain {
			p.entries[i].LastCheckedAt = time.Now().UTC()
			return
		}
	}
}

// disallowsAll detects a global disallow: a `User-agent: *` block containing `Disallow: /`
func disallowsAll(body string) bool {
	inWildcard := false
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "user-agent:"):
			agent := strings.TrimSpace(line[len("user-agent:"):])
			inWildcard = agent == "*"
		case inWildcard && strings.HasPrefix(lower, "disallow:"):
			path := strings.TrimSpace(line[len("disallow:"):])
			if path == "/" {
				return true
			}
		}
	}
	return false
}
