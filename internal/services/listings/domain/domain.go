// Package domain holds the canonical listing and lead types
package domain

import (
	"time"

	perr "micdrop/internal/platform/errors"
)

// Listing is the canonical event row persisted by the ingestion pipeline
type Listing struct {
	ID          int64      `json:"id"`
	Source      string     `json:"source"`
	SourceID    string     `json:"source_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	VenueName   string     `json:"venue_name,omitempty"`
	Address     string     `json:"address,omitempty"`
	City        string     `json:"city,omitempty"`
	Region      string     `json:"region,omitempty"`
	URL         string     `json:"url"`
	SignupURL   string     `json:"signup_url,omitempty"`
	StartUTC    *time.Time `json:"start_utc,omitempty"`
	DayOfWeek   *int       `json:"day_of_week,omitempty"` // 0=Sunday .. 6=Saturday
	TimeText    string     `json:"time_text,omitempty"`
	Recurrence  string     `json:"recurrence,omitempty"`
	Status      string     `json:"status"`
	ScrapedHash string     `json:"scraped_hash,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// ListingStatusActive is the only listing status the pipeline writes today
const ListingStatusActive = "ACTIVE"

// Lead is a raw URL-keyed crumb from the search pipeline awaiting review
type Lead struct {
	ID         string     `json:"id"` // uuid minted on first insert
	URL        string     `json:"url"`
	Source     string     `json:"source"`
	Title      string     `json:"title,omitempty"`
	Snippet    string     `json:"snippet,omitempty"`
	Raw        string     `json:"raw,omitempty"`        // source payload as received
	Normalized string     `json:"normalized,omitempty"` // folded title+snippet for review tooling
	SeenHash   string     `json:"seen_hash"`
	Status     LeadStatus `json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	ReviewedAt *time.Time `json:"reviewed_at,omitempty"`
}

// LeadStatus is the review state of a Lead
type LeadStatus string

// Lead statuses form a static compile-time table; there is no runtime probing
const (
	LeadStatusNew       LeadStatus = "NEW"
	LeadStatusReview    LeadStatus = "REVIEW"
	LeadStatusApproved  LeadStatus = "APPROVED"
	LeadStatusRejected  LeadStatus = "REJECTED"
	LeadStatusDuplicate LeadStatus = "DUPLICATE"
)

var leadStatuses = map[LeadStatus]bool{
	LeadStatusNew:       true,
	LeadStatusReview:    true,
	LeadStatusApproved:  true,
	LeadStatusRejected:  true,
	LeadStatusDuplicate: true,
}

// Valid reports whether s is a known lead status
func (s LeadStatus) Valid() bool { return leadStatuses[s] }

// ParseLeadStatus converts a wire string to a LeadStatus or errors
func ParseLeadStatus(s string) (LeadStatus, error) {
	st := LeadStatus(s)
	if !st.Valid() {
		return "", perr.InvalidArgf("unknown lead status %q", s)
	}
	return st, nil
}

// LeadStatuses returns the full status table in declaration order
func LeadStatuses() []LeadStatus {
	return []LeadStatus{
		LeadStatusNew,
		LeadStatusReview,
		LeadStatusApproved,
		LeadStatusRejected,
		LeadStatusDuplicate,
	}
}

// ListingQuery filters ListListings
type ListingQuery struct {
	Status string     `json:"status,omitempty"`
	Source string     `json:"source,omitempty"`
	City   string     `json:"city,omitempty"`
	Since  *time.Time `json:"since,omitempty"`
	Until  *time.Time `json:"until,omitempty"`
	Limit  int        `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}

// LeadQuery filters ListLeads
type LeadQuery struct {
	Status string `json:"status,omitempty"`
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}
