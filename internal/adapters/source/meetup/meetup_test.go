package meetup

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"micdrop/internal/adapters/source"
)

func TestEnabled_RequiresToken(t *testing.T) {
	if New(Options{}).Enabled() {
		t.Fatal("tokenless adapter must be disabled")
	}
	if !New(Options{Token: "t"}).Enabled() {
		t.Fatal("token should enable the adapter")
	}
}

func TestFetch_DisabledReturnsEmpty(t *testing.T) {
	b, err := New(Options{}).Fetch(context.Background(), source.FetchArgs{Cities: []string{"Austin"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(b.Candidates) != 0 {
		t.Fatalf("expected empty batch, got %d", len(b.Candidates))
	}
}

func TestFetch_MapsEventsAndFilters(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		resp := eventsResponse{Events: []event{
			{
				ID:          "evt-1",
				Name:        "Tuesday Open Mic",
				Description: "weekly comedy showcase",
				Link:        "https://meetup.com/e/evt-1",
				TimeMs:      time.Date(2026, 9, 1, 20, 0, 0, 0, time.UTC).UnixMilli(),
			},
			{
				ID:   "evt-2",
				Name: "Knitting Circle",
				Link: "https://meetup.com/e/evt-2",
			},
		}}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	a := New(Options{Token: "tok", BaseURL: srv.URL})
	b, err := a.Fetch(context.Background(), source.FetchArgs{
		Cities:      []string{"Austin"},
		RadiusMiles: 25,
		WindowDays:  30,
		Now:         time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if len(b.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1 (keyword filter drops knitting)", len(b.Candidates))
	}
	c := b.Candidates[0]
	if c.Source != "meetup" || c.SourceID != "evt-1" {
		t.Fatalf("identity mismatch: %+v", c)
	}
	if c.StartUTC == nil || c.StartUTC.Hour() != 20 {
		t.Fatalf("start mismatch: %v", c.StartUTC)
	}
	if c.City != "Austin" {
		t.Fatalf("city fallback = %q", c.City)
	}
}

func TestFetch_DeduplicatesAcrossTerms(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(eventsResponse{Events: []event{
			{ID: "same", Name: "Comedy Open Mic", Link: "https://meetup.com/e/same"},
		}})
	}))
	defer srv.Close()

	a := New(Options{Token: "tok", BaseURL: srv.URL})
	b, err := a.Fetch(context.Background(), source.FetchArgs{Cities: []string{"Austin"}})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(b.Candidates) != 1 {
		t.Fatalf("candidates = %d, want 1 after id dedupe", len(b.Candidates))
	}
}

func TestFetch_Non200Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	a := New(Options{Token: "tok", BaseURL: srv.URL})
	if _, err := a.Fetch(context.Background(), source.FetchArgs{Cities: []string{"Austin"}}); err == nil {
		t.Fatal("expected error on upstream failure")
	}
}
