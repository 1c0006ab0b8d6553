package service

import (
	"context"
	"testing"

	"micdrop/internal/core/dedupe"
	perr "micdrop/internal/platform/errors"
	"micdrop/internal/services/listings/domain"
)

type fakeStorage struct {
	lastListing  domain.Listing
	lastIdentity dedupe.Identity
	lastLead     domain.Lead
	lastQuery    domain.ListingQuery
	lastLeadQ    domain.LeadQuery
}

func (f *fakeStorage) UpsertListing(_ context.Context, l domain.Listing, id dedupe.Identity) (domain.Listing, bool, error) {
	f.lastListing, f.lastIdentity = l, id
	return l, true, nil
}

func (f *fakeStorage) ListListings(_ context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	f.lastQuery = q
	return nil, nil
}

func (f *fakeStorage) UpsertLead(_ context.Context, l domain.Lead) (domain.Lead, error) {
	f.lastLead = l
	return l, nil
}

func (f *fakeStorage) UpdateLeadStatus(_ context.Context, id string, status domain.LeadStatus) (domain.Lead, error) {
	return domain.Lead{ID: id, Status: status}, nil
}

func (f *fakeStorage) ListLeads(_ context.Context, q domain.LeadQuery) ([]domain.Lead, error) {
	f.lastLeadQ = q
	return nil, nil
}

func TestSaveCandidate_NaturalKeyClearsHash(t *testing.T) {
	fs := &fakeStorage{}
	s := New(fs, Config{})

	out, err := s.SaveCandidate(context.Background(), domain.Listing{
		Source:   "meetup",
		SourceID: "evt-1",
		Title:    "Tuesday Open Mic",
		URL:      "https://meetup.com/e/evt-1",
	}, "DOW:2")
	if err != nil {
		t.Fatalf("SaveCandidate: %v", err)
	}
	if !fs.lastIdentity.Natural() {
		t.Fatal("expected natural identity")
	}
	if fs.lastListing.ScrapedHash != "" {
		t.Fatalf("natural rows must not carry a content hash, got %q", fs.lastListing.ScrapedHash)
	}
	if !out.Created {
		t.Fatal("outcome should reflect storage create")
	}
}

func TestSaveCandidate_HashPath(t *testing.T) {
	fs := &fakeStorage{}
	s := New(fs, Config{})

	_, err := s.SaveCandidate(context.Background(), domain.Listing{
		Source:    "websearch",
		Title:     "Velvet Mic",
		VenueName: "Velvet Room",
		URL:       "https://badslava.com/velvet",
	}, "DOW:3")
	if err != nil {
		t.Fatalf("SaveCandidate: %v", err)
	}
	if fs.lastIdentity.Natural() {
		t.Fatal("no source id means hash identity")
	}
	want := dedupe.Derive("websearch", "", "Velvet Mic", "DOW:3", "Velvet Room")
	if fs.lastListing.ScrapedHash != want.Hash {
		t.Fatalf("hash = %q, want %q", fs.lastListing.ScrapedHash, want.Hash)
	}
	if fs.lastListing.Status != domain.ListingStatusActive {
		t.Fatalf("status defaulted to %q", fs.lastListing.Status)
	}
}

func TestSaveCandidate_RejectsBlankTitleAndURL(t *testing.T) {
	s := New(&fakeStorage{}, Config{})

	if _, err := s.SaveCandidate(context.Background(), domain.Listing{URL: "https://x"}, "DOW:1"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("blank title: err = %v", err)
	}
	if _, err := s.SaveCandidate(context.Background(), domain.Listing{Title: "Mic"}, "DOW:1"); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("blank url: err = %v", err)
	}
}

func TestRecordLead_FingerprintsURL(t *testing.T) {
	fs := &fakeStorage{}
	s := New(fs, Config{})

	_, err := s.RecordLead(context.Background(), domain.LeadInput{
		URL:     "https://badslava.com/austin",
		Source:  "websearch",
		Title:   "Austin Mics",
		Snippet: "Comedy Open Mic",
		Raw:     `{"link":"https://badslava.com/austin"}`,
	})
	if err != nil {
		t.Fatalf("RecordLead: %v", err)
	}
	if fs.lastLead.SeenHash != domain.SeenHash("https://badslava.com/austin") {
		t.Fatalf("seen hash = %q", fs.lastLead.SeenHash)
	}
	if fs.lastLead.Status != domain.LeadStatusNew {
		t.Fatalf("status = %q", fs.lastLead.Status)
	}
	if fs.lastLead.Raw != `{"link":"https://badslava.com/austin"}` {
		t.Fatalf("raw = %q", fs.lastLead.Raw)
	}
	if fs.lastLead.Normalized != "austin mics comedy open mic" {
		t.Fatalf("normalized = %q", fs.lastLead.Normalized)
	}
}

func TestReviewLead_RejectsUnknownStatus(t *testing.T) {
	s := New(&fakeStorage{}, Config{})
	if _, err := s.ReviewLead(context.Background(), "id", domain.LeadStatus("MAYBE")); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("err = %v", err)
	}
}

func TestQueries_ClampLimit(t *testing.T) {
	fs := &fakeStorage{}
	s := New(fs, Config{HardLimit: 50})

	if _, err := s.Listings(context.Background(), domain.ListingQuery{Limit: 9999}); err != nil {
		t.Fatalf("Listings: %v", err)
	}
	if fs.lastQuery.Limit != 50 {
		t.Fatalf("limit = %d, want clamp to 50", fs.lastQuery.Limit)
	}

	if _, err := s.Leads(context.Background(), domain.LeadQuery{Limit: 9999}); err != nil {
		t.Fatalf("Leads: %v", err)
	}
	if fs.lastLeadQ.Limit != 50 {
		t.Fatalf("lead limit = %d, want clamp to 50", fs.lastLeadQ.Limit)
	}
}
