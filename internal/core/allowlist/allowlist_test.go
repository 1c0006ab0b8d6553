package allowlist

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type fakeDoer struct {
	status int
	body   string
	err    error
	calls  int
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &http.Response{
		StatusCode: f.status,
		Body:       io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func TestNew_MergesExtensions(t *testing.T) {
	p := New([]string{" ComedyCellar.com ", "badslava.com", ""})

	if !p.IsEnabledDomain("comedycellar.com") {
		t.Fatal("extension domain should be enabled")
	}
	// duplicate of a static entry must not double up
	n := 0
	for _, e := range p.Entries() {
		if e.Domain == "badslava.com" {
			n++
		}
	}
	if n != 1 {
		t.Fatalf("badslava.com appears %d times, want 1", n)
	}
}

func TestIsEnabledDomain_DisabledEntry(t *testing.T) {
	p := New(nil)
	if p.IsEnabledDomain("meetup.com") {
		t.Fatal("disabled entry must not report enabled")
	}
}

func TestIsAllowedURL(t *testing.T) {
	p := New(nil)

	tests := []struct {
		url  string
		want bool
	}{
		{"https://badslava.com/texas/austin", true},
		{"https://www.badslava.com/texas", true}, // subdomain suffix match
		{"https://notbadslava.com/", false},      // suffix requires a dot boundary
		{"https://evil.com/badslava.com", false},
		{"https://meetup.com/x", false}, // disabled entry
		{"not a url", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := p.IsAllowedURL(tt.url); got != tt.want {
			t.Fatalf("IsAllowedURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestPathLooksRelevant(t *testing.T) {
	p := New(nil)

	for _, path := range []string{"/open-mic/austin", "/OpenMic", "/events/2026", "/comedy/signup"} {
		if !p.PathLooksRelevant(path) {
			t.Fatalf("expected %q to look relevant", path)
		}
	}
	if p.PathLooksRelevant("/about-us") {
		t.Fatal("expected /about-us to be irrelevant")
	}
}

func TestCheckCrawlPermission_GlobalDisallow(t *testing.T) {
	d := &fakeDoer{status: 200, body: "User-agent: *\nDisallow: /\n"}
	p := New(nil, WithClient(d))

	if p.CheckCrawlPermission(context.Background(), "badslava.com") {
		t.Fatal("global disallow must deny crawling")
	}
}

func TestCheckCrawlPermission_ScopedDisallowAllowed(t *testing.T) {
	body := "User-agent: googlebot\nDisallow: /\n\nUser-agent: *\nDisallow: /admin\n"
	d := &fakeDoer{status: 200, body: body}
	p := New(nil, WithClient(d))

	if !p.CheckCrawlPermission(context.Background(), "badslava.com") {
		t.Fatal("disallow scoped to another agent must not deny")
	}
}

func TestCheckCrawlPermission_FetchErrorFailsClosed(t *testing.T) {
	d := &fakeDoer{err: errors.New("dial timeout")}
	p := New(nil, WithClient(d))

	if p.CheckCrawlPermission(context.Background(), "badslava.com") {
		t.Fatal("transport error must fail closed")
	}
}

func TestCheckCrawlPermission_Non200FailsOpen(t *testing.T) {
	d := &fakeDoer{status: 404, body: "not found"}
	p := New(nil, WithClient(d))

	if !p.CheckCrawlPermission(context.Background(), "badslava.com") {
		t.Fatal("missing robots file must fail open")
	}
}

func TestCheckCrawlPermission_MarksChecked(t *testing.T) {
	d := &fakeDoer{status: 200, body: ""}
	p := New(nil, WithClient(d))

	p.CheckCrawlPermission(context.Background(), "badslava.com")

	for _, e := range p.Entries() {
		if e.Domain == "badslava.com" {
			if e.LastCheckedAt.IsZero() {
				t.Fatal("expected lastCheckedAt to be set")
			}
			return
		}
	}
	t.Fatal("entry missing")
}

func TestDisallowsAll_CommentsAndCase(t *testing.T) {
	body := "# politeness\nUSER-AGENT: *\ndisallow: / # everything\n"
	if !disallowsAll(body) {
		t.Fatal("expected case-insensitive global disallow match")
	}
	if disallowsAll("User-agent: *\nDisallow:\n") {
		t.Fatal("empty disallow must not deny")
	}
}
