package repo

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"micdrop/internal/core/dedupe"
	perr "micdrop/internal/platform/errors"
	"micdrop/internal/platform/store/file"
	"micdrop/internal/services/listings/domain"
)

// Document is the flat-file schema. One JSON document holds everything the
// SQL backend spreads across tables
type Document struct {
	NextListingID int64            `json:"next_listing_id"`
	Listings      []domain.Listing `json:"listings"`
	Leads         []domain.Lead    `json:"leads"`
	IngestLog     []IngestEntry    `json:"ingest_log"`
}

// IngestEntry mirrors the ingest_log table for the flat-file backend
type IngestEntry struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Succeeded bool      `json:"succeeded"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"ts"`
}

type fileStore struct{ db *file.DB }

// NewFile constructs a Storage over the flat-file document backend
func NewFile(db *file.DB) Storage { return &fileStore{db: db} }

// UpsertListing implements Storage
func (s *fileStore) UpsertListing(_ context.Context, l domain.Listing, id dedupe.Identity) (domain.Listing, bool, error) {
	var doc Document
	var out domain.Listing
	var created bool

	err := s.db.Update(&doc, func() error {
		now := time.Now().UTC()
		for i := range doc.Listings {
			if !sameIdentity(doc.Listings[i], id) {
				continue
			}
			// a hash match is identity only; the stored record wins
			if !id.Natural() {
				out = doc.Listings[i]
				return nil
			}
			keepID, keepCreated := doc.Listings[i].ID, doc.Listings[i].CreatedAt
			doc.Listings[i] = l
			doc.Listings[i].ID = keepID
			doc.Listings[i].CreatedAt = keepCreated
			doc.Listings[i].UpdatedAt = now
			out = doc.Listings[i]
			return nil
		}

		doc.NextListingID++
		l.ID = doc.NextListingID
		l.CreatedAt = now
		l.UpdatedAt = now
		doc.Listings = append(doc.Listings, l)
		out = l
		created = true
		return nil
	})
	if err != nil {
		return domain.Listing{}, false, err
	}
	return out, created, nil
}

func sameIdentity(l domain.Listing, id dedupe.Identity) bool {
	if id.Natural() {
		return l.Source == id.Source && l.SourceID == id.SourceID
	}
	return l.ScrapedHash == id.Hash
}

// ListListings implements Storage
func (s *fileStore) ListListings(_ context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	var doc Document
	if err := s.db.View(&doc); err != nil {
		return nil, err
	}

	out := make([]domain.Listing, 0, len(doc.Listings))
	for _, l := range doc.Listings {
		if q.Status != "" && l.Status != q.Status {
			continue
		}
		if q.Source != "" && l.Source != q.Source {
			continue
		}
		if q.City != "" && !strings.EqualFold(l.City, q.City) {
			continue
		}
		if q.Since != nil && (l.StartUTC == nil || l.StartUTC.Before(*q.Since)) {
			continue
		}
		if q.Until != nil && (l.StartUTC == nil || !l.StartUTC.Before(*q.Until)) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].StartUTC, out[j].StartUTC
		switch {
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return out[i].ID < out[j].ID
	})
	return clampListings(out, q.Limit), nil
}

// UpsertLead implements Storage
func (s *fileStore) UpsertLead(_ context.Context, l domain.Lead) (domain.Lead, error) {
	var doc Document
	var out domain.Lead

	err := s.db.Update(&doc, func() error {
		now := time.Now().UTC()
		for i := range doc.Leads {
			if doc.Leads[i].URL != l.URL {
				continue
			}
			doc.Leads[i].Title = l.Title
			doc.Leads[i].Snippet = l.Snippet
			doc.Leads[i].Raw = l.Raw
			doc.Leads[i].Normalized = l.Normalized
			doc.Leads[i].SeenHash = l.SeenHash
			doc.Leads[i].UpdatedAt = now
			out = doc.Leads[i]
			return nil
		}

		l.ID = uuid.NewString()
		l.Status = domain.LeadStatusNew
		l.CreatedAt = now
		l.UpdatedAt = now
		doc.Leads = append(doc.Leads, l)
		out = l
		return nil
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return out, nil
}

// UpdateLeadStatus implements Storage
func (s *fileStore) UpdateLeadStatus(_ context.Context, id string, status domain.LeadStatus) (domain.Lead, error) {
	var doc Document
	var out domain.Lead

	err := s.db.Update(&doc, func() error {
		now := time.Now().UTC()
		for i := range doc.Leads {
			if doc.Leads[i].ID != id {
				continue
			}
			doc.Leads[i].Status = status
			doc.Leads[i].ReviewedAt = &now
			doc.Leads[i].UpdatedAt = now
			out = doc.Leads[i]
			return nil
		}
		return perr.NotFoundf("lead %s not found", id)
	})
	if err != nil {
		return domain.Lead{}, err
	}
	return out, nil
}

// ListLeads implements Storage
func (s *fileStore) ListLeads(_ context.Context, q domain.LeadQuery) ([]domain.Lead, error) {
	var doc Document
	if err := s.db.View(&doc); err != nil {
		return nil, err
	}

	out := make([]domain.Lead, 0, len(doc.Leads))
	for _, l := range doc.Leads {
		if q.Status != "" && string(l.Status) != q.Status {
			continue
		}
		if q.Source != "" && l.Source != q.Source {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func clampListings(xs []domain.Listing, limit int) []domain.Listing {
	if limit <= 0 {
		limit = 100
	}
	if len(xs) > limit {
		xs = xs[:limit]
	}
	return xs
}

