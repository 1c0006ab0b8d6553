package service

import (
	"context"
	"net/url"
	"strings"
	"sync"
)

// CrawlPolicy is the slice of the allowlist the gate wraps
type CrawlPolicy interface {
	EnabledDomains() []string
	IsAllowedURL(raw string) bool
	PathLooksRelevant(path string) bool
	CheckCrawlPermission(ctx context.Context, domain string) bool
}

// RobotsGate wraps the allowlist with per-run robots.txt results.
// The crawling adapter reads domains through the gate, so a domain denied by
// robots drops out of the crawl until the next refresh
type RobotsGate struct {
	inner CrawlPolicy

	mu     sync.RWMutex
	denied map[string]bool
}

// NewRobotsGate constructs a gate over the given policy
func NewRobotsGate(p CrawlPolicy) *RobotsGate {
	return &RobotsGate{inner: p, denied: map[string]bool{}}
}

// Refresh re-checks robots.txt for every enabled domain
func (g *RobotsGate) Refresh(ctx context.Context) {
	denied := map[string]bool{}
	for _, d := range g.inner.EnabledDomains() {
		if !g.inner.CheckCrawlPermission(ctx, d) {
			denied[d] = true
		}
	}
	g.mu.Lock()
	g.denied = denied
	g.mu.Unlock()
}

// EnabledDomains returns the allowlisted domains minus robots denials
func (g *RobotsGate) EnabledDomains() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []string
	for _, d := range g.inner.EnabledDomains() {
		if !g.denied[d] {
			out = append(out, d)
		}
	}
	return out
}

// IsAllowedURL applies the allowlist and the robots denials
func (g *RobotsGate) IsAllowedURL(raw string) bool {
	if !g.inner.IsAllowedURL(raw) {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())

	g.mu.RLock()
	defer g.mu.RUnlock()
	for d := range g.denied {
		if host == d || strings.HasSuffix(host, "."+d) {
			return false
		}
	}
	return true
}

// PathLooksRelevant delegates to the allowlist
func (g *RobotsGate) PathLooksRelevant(path string) bool { return g.inner.PathLooksRelevant(path) }
