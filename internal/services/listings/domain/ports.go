package domain

import (
	"context"
	"fmt"
	"hash/fnv"
)

// LeadInput is the raw crumb handed to the lead pipeline by the crawler
type LeadInput struct {
	URL     string `json:"url" validate:"required,url"`
	Source  string `json:"source" validate:"required"`
	Title   string `json:"title,omitempty"`
	Snippet string `json:"snippet,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// UpsertOutcome reports what a write actually did
type UpsertOutcome struct {
	Listing Listing `json:"listing"`
	Created bool    `json:"created"`
}

// WriterPort is the ingestion-facing write surface
type WriterPort interface {
	SaveCandidate(ctx context.Context, l Listing, whenKey string) (UpsertOutcome, error)
	RecordLead(ctx context.Context, in LeadInput) (Lead, error)
}

// QueryPort is the read surface for the API
type QueryPort interface {
	Listings(ctx context.Context, q ListingQuery) ([]Listing, error)
	Leads(ctx context.Context, q LeadQuery) ([]Lead, error)
}

// ReviewPort moves leads through the review state machine
type ReviewPort interface {
	ReviewLead(ctx context.Context, id string, status LeadStatus) (Lead, error)
}

// SeenHash fingerprints a lead URL for cheap change detection
func SeenHash(url string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(url))
	return fmt.Sprintf("%016x", h.Sum64())
}
