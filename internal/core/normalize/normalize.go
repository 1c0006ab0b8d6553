// Package normalize turns heterogeneous raw candidates into canonical listings
package normalize

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"micdrop/internal/services/listings/domain"

	"github.com/go-playground/validator/v10"
)

// RawCandidate is the adapter output schema before validation
// Adapters fill what they can; the normalizer rejects or repairs the rest
type RawCandidate struct {
	Source      string `validate:"required"`
	SourceID    string
	Title       string `validate:"required"`
	Description string
	VenueName   string
	Address     string
	City        string
	Region      string
	URL         string `validate:"required"`
	SignupURL   string
	StartUTC    *time.Time
	DayOfWeek   *int
	TimeText    string
	Recurrence  string
}

// Normalized pairs the canonical listing with its transient when key
// WhenKey feeds the dedupe hash and is never persisted
type Normalized struct {
	Listing domain.Listing
	WhenKey string
}

var (
	// abbreviated weekday names anywhere in free text, longest alternatives first
	weekdayRe = regexp.MustCompile(`(?i)\b(sunday|monday|tuesday|wednesday|thursday|friday|saturday|sun|mon|tues|tue|weds|wed|thurs|thur|thu|fri|sat)\b`)

	// H(:MM)? AM/PM clock times, e.g. "8 PM", "7:30pm"
	clockRe = regexp.MustCompile(`(?i)\b(\d{1,2})(?::(\d{2}))?\s*([AP])\.?M\.?\b`)
)

var weekdayIndex = map[string]int{
	"sun": 0, "sunday": 0,
	"mon": 1, "monday": 1,
	"tue": 2, "tues": 2, "tuesday": 2,
	"wed": 3, "weds": 3, "wednesday": 3,
	"thu": 4, "thur": 4, "thurs": 4, "thursday": 4,
	"fri": 5, "friday": 5,
	"sat": 6, "saturday": 6,
}

// Normalizer validates and canonicalizes raw candidates
type Normalizer struct {
	validate *validator.Validate
}

// New constructs a Normalizer with its own validator instance
func New() *Normalizer {
	return &Normalizer{validate: validator.New(validator.WithRequiredStructEnabled())}
}

// Normalize validates raw, fills derived fields, and computes the when key.
// Rejections return an error the caller counts; per-item logging stays off
// the hot path
func (n *Normalizer) Normalize(raw RawCandidate) (Normalized, error) {
	if err := n.validate.Struct(raw); err != nil {
		return Normalized{}, fmt.Errorf("candidate schema: %w", err)
	}
	u, err := url.Parse(strings.TrimSpace(raw.URL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Normalized{}, fmt.Errorf("candidate url %q is not http(s)", raw.URL)
	}

	l := domain.Listing{
		Source:      strings.TrimSpace(raw.Source),
		SourceID:    strings.TrimSpace(raw.SourceID),
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		VenueName:   strings.TrimSpace(raw.VenueName),
		Address:     strings.TrimSpace(raw.Address),
		City:        strings.TrimSpace(raw.City),
		Region:      strings.TrimSpace(raw.Region),
		URL:         u.String(),
		SignupURL:   strings.TrimSpace(raw.SignupURL),
		StartUTC:    raw.StartUTC,
		DayOfWeek:   raw.DayOfWeek,
		TimeText:    strings.TrimSpace(raw.TimeText),
		Recurrence:  strings.TrimSpace(raw.Recurrence),
		Status:      domain.ListingStatusActive,
	}
	if l.Title == "" {
		return Normalized{}, fmt.Errorf("candidate title is blank")
	}

	freeText := l.Title + " " + l.Description + " " + l.TimeText

	// derive day of week from free text when the source left it out
	if l.DayOfWeek == nil {
		if d, ok := ExtractDayOfWeek(freeText); ok {
			l.DayOfWeek = &d
		}
	}
	if l.DayOfWeek != nil && (*l.DayOfWeek < 0 || *l.DayOfWeek > 6) {
		return Normalized{}, fmt.Errorf("day of week %d out of range", *l.DayOfWeek)
	}

	// derive a display time when the source gave only prose
	if l.TimeText == "" {
		if tt, ok := ExtractClockTime(freeText); ok {
			l.TimeText = tt
		}
	}

	return Normalized{Listing: l, WhenKey: WhenKey(l)}, nil
}

// WhenKey computes the transient temporal key for dedupe hashing:
// an exact instant when known, else the weekday, else a recurrence prefix
func WhenKey(l domain.Listing) string {
	switch {
	case l.StartUTC != nil:
		return l.StartUTC.UTC().Format(time.RFC3339)
	case l.DayOfWeek != nil:
		return fmt.Sprintf("DOW:%d", *l.DayOfWeek)
	default:
		rec := l.Recurrence
		if len(rec) > 64 {
			rec = rec[:64]
		}
		return "REC:" + rec
	}
}

// ExtractDayOfWeek finds the first weekday mention in text (0=Sunday .. 6=Saturday)
func ExtractDayOfWeek(text string) (int, bool) {
	m := weekdayRe.FindString(text)
	if m == "" {
		return 0, false
	}
	d, ok := weekdayIndex[strings.ToLower(m)]
	return d, ok
}

// ExtractClockTime finds the first H(:MM) AM/PM mention and returns it in a
// canonical "H:MM PM" form
func ExtractClockTime(text string) (string, bool) {
	m := clockRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	hour := m[1]
	minute := m[2]
	if minute == "" {
		minute = "00"
	}
	meridiem := strings.ToUpper(m[3]) + "M"
	return fmt.Sprintf("%s:%s %s", hour, minute, meridiem), true
}
