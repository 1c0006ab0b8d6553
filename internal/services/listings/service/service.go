// Package service contains listings workflows
package service

import (
	"context"
	"strings"

	"micdrop/internal/core/dedupe"
	"micdrop/internal/core/textnorm"
	perr "micdrop/internal/platform/errors"
	"micdrop/internal/services/listings/domain"
	"micdrop/internal/services/listings/repo"
)

// Service defines the service contract for listings
type Service interface {
	domain.WriterPort
	domain.QueryPort
	domain.ReviewPort
}

// Config for the listings service
type Config struct {
	HardLimit int
}

// Svc implements the Service interface against whichever Storage the module bound
type Svc struct {
	Repo repo.Storage
	Cfg  Config
}

// New creates a new listings service
func New(storage repo.Storage, cfg Config) *Svc {
	if storage == nil {
		panic("listings.Service requires a non nil Storage")
	}
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 500
	}
	return &Svc{Repo: storage, Cfg: cfg}
}

// SaveCandidate implements domain.WriterPort.
// The dedupe identity decides the conflict key: a trusted upstream id wins,
// otherwise the content hash of title, schedule and venue
func (s *Svc) SaveCandidate(ctx context.Context, l domain.Listing, whenKey string) (domain.UpsertOutcome, error) {
	if strings.TrimSpace(l.Title) == "" {
		return domain.UpsertOutcome{}, perr.InvalidArgf("listing title required")
	}
	if strings.TrimSpace(l.URL) == "" {
		return domain.UpsertOutcome{}, perr.InvalidArgf("listing url required")
	}

	id := dedupe.Derive(l.Source, l.SourceID, l.Title, whenKey, l.VenueName)
	if id.Natural() {
		l.ScrapedHash = ""
	} else {
		l.SourceID = ""
		l.ScrapedHash = id.Hash
	}
	if l.Status == "" {
		l.Status = domain.ListingStatusActive
	}

	out, created, err := s.Repo.UpsertListing(ctx, l, id)
	if err != nil {
		return domain.UpsertOutcome{}, err
	}
	return domain.UpsertOutcome{Listing: out, Created: created}, nil
}

// RecordLead implements domain.WriterPort.
// Raw keeps the payload as the adapter saw it; Normalized is the folded
// title+snippet, refreshed on every crawl alongside the raw form
func (s *Svc) RecordLead(ctx context.Context, in domain.LeadInput) (domain.Lead, error) {
	if strings.TrimSpace(in.URL) == "" {
		return domain.Lead{}, perr.InvalidArgf("lead url required")
	}
	return s.Repo.UpsertLead(ctx, domain.Lead{
		URL:        in.URL,
		Source:     in.Source,
		Title:      in.Title,
		Snippet:    in.Snippet,
		Raw:        in.Raw,
		Normalized: textnorm.Fold(in.Title + " " + in.Snippet),
		SeenHash:   domain.SeenHash(in.URL),
		Status:     domain.LeadStatusNew,
	})
}

// ReviewLead implements domain.ReviewPort
func (s *Svc) ReviewLead(ctx context.Context, id string, status domain.LeadStatus) (domain.Lead, error) {
	if !status.Valid() {
		return domain.Lead{}, perr.InvalidArgf("unknown lead status %q", status)
	}
	return s.Repo.UpdateLeadStatus(ctx, id, status)
}

// Listings implements domain.QueryPort
func (s *Svc) Listings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	if q.Limit > s.Cfg.HardLimit {
		q.Limit = s.Cfg.HardLimit
	}
	return s.Repo.ListListings(ctx, q)
}

// Leads implements domain.QueryPort
func (s *Svc) Leads(ctx context.Context, q domain.LeadQuery) ([]domain.Lead, error) {
	if q.Limit > s.Cfg.HardLimit {
		q.Limit = s.Cfg.HardLimit
	}
	return s.Repo.ListLeads(ctx, q)
}
