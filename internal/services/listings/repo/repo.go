// Package repo provides the listings repository implementations
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"micdrop/internal/core/dedupe"
	"micdrop/internal/modkit/repokit"
	perr "micdrop/internal/platform/errors"
	pstrings "micdrop/internal/platform/strings"
	"micdrop/internal/services/listings/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the listings repository
type Storage interface {
	UpsertListing(ctx context.Context, l domain.Listing, id dedupe.Identity) (domain.Listing, bool, error)
	ListListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error)
	UpsertLead(ctx context.Context, l domain.Lead) (domain.Lead, error)
	UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus) (domain.Lead, error)
	ListLeads(ctx context.Context, q domain.LeadQuery) ([]domain.Lead, error)
}

const listingCols = `
	id, source, COALESCE(source_id, ''), title, description, venue_name, address,
	city, region, url, signup_url, start_utc, day_of_week, time_text, recurrence,
	status, COALESCE(scraped_hash, ''), created_at, updated_at`

// UpsertListing implements Storage.
// Natural identities conflict on (source, source_id) and take the update; a
// scraped_hash match is identity only, the stored record stays untouched.
// NULL keys keep the two unique indexes from crossing paths
func (s *pg) UpsertListing(ctx context.Context, l domain.Listing, id dedupe.Identity) (domain.Listing, bool, error) {
	if !id.Natural() {
		return s.insertByHash(ctx, l)
	}

	sql := `
		INSERT INTO listings
			(source, source_id, title, description, venue_name, address, city, region,
			url, signup_url, start_utc, day_of_week, time_text, recurrence, status,
			scraped_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16, now(), now())
		ON CONFLICT (source, source_id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			venue_name = EXCLUDED.venue_name,
			address = EXCLUDED.address,
			city = EXCLUDED.city,
			region = EXCLUDED.region,
			url = EXCLUDED.url,
			signup_url = EXCLUDED.signup_url,
			start_utc = EXCLUDED.start_utc,
			day_of_week = EXCLUDED.day_of_week,
			time_text = EXCLUDED.time_text,
			recurrence = EXCLUDED.recurrence,
			status = EXCLUDED.status,
			updated_at = now()
		RETURNING ` + listingCols + `, (xmax = 0)`

	var out domain.Listing
	var created bool
	err := s.q.QueryRow(ctx, sql,
		l.Source, pstrings.SQLNull(l.SourceID), l.Title, l.Description, l.VenueName,
		l.Address, l.City, l.Region, l.URL, l.SignupURL, l.StartUTC, l.DayOfWeek,
		l.TimeText, l.Recurrence, l.Status, pstrings.SQLNull(l.ScrapedHash),
	).Scan(
		&out.ID, &out.Source, &out.SourceID, &out.Title, &out.Description,
		&out.VenueName, &out.Address, &out.City, &out.Region, &out.URL,
		&out.SignupURL, &out.StartUTC, &out.DayOfWeek, &out.TimeText,
		&out.Recurrence, &out.Status, &out.ScrapedHash, &out.CreatedAt,
		&out.UpdatedAt, &created,
	)
	if err != nil {
		return domain.Listing{}, false, perr.FromPostgres(err, "upsert listing failed")
	}
	return out, created, nil
}

// insertByHash inserts a content-identified listing. A conflicting
// scraped_hash means the record already exists, so the insert becomes a read
func (s *pg) insertByHash(ctx context.Context, l domain.Listing) (domain.Listing, bool, error) {
	sql := `
		INSERT INTO listings
			(source, source_id, title, description, venue_name, address, city, region,
			url, signup_url, start_utc, day_of_week, time_text, recurrence, status,
			scraped_hash, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16, now(), now())
		ON CONFLICT (scraped_hash) DO NOTHING
		RETURNING ` + listingCols

	var out domain.Listing
	err := s.q.QueryRow(ctx, sql,
		l.Source, pstrings.SQLNull(l.SourceID), l.Title, l.Description, l.VenueName,
		l.Address, l.City, l.Region, l.URL, l.SignupURL, l.StartUTC, l.DayOfWeek,
		l.TimeText, l.Recurrence, l.Status, pstrings.SQLNull(l.ScrapedHash),
	).Scan(
		&out.ID, &out.Source, &out.SourceID, &out.Title, &out.Description,
		&out.VenueName, &out.Address, &out.City, &out.Region, &out.URL,
		&out.SignupURL, &out.StartUTC, &out.DayOfWeek, &out.TimeText,
		&out.Recurrence, &out.Status, &out.ScrapedHash, &out.CreatedAt,
		&out.UpdatedAt,
	)
	if err == nil {
		return out, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return domain.Listing{}, false, perr.FromPostgres(err, "insert listing failed")
	}

	err = s.q.QueryRow(ctx,
		`SELECT `+listingCols+` FROM listings WHERE scraped_hash = $1`, l.ScrapedHash,
	).Scan(
		&out.ID, &out.Source, &out.SourceID, &out.Title, &out.Description,
		&out.VenueName, &out.Address, &out.City, &out.Region, &out.URL,
		&out.SignupURL, &out.StartUTC, &out.DayOfWeek, &out.TimeText,
		&out.Recurrence, &out.Status, &out.ScrapedHash, &out.CreatedAt,
		&out.UpdatedAt,
	)
	if err != nil {
		return domain.Listing{}, false, perr.FromPostgres(err, "read listing by hash failed")
	}
	return out, false, nil
}

// ListListings implements Storage
func (s *pg) ListListings(ctx context.Context, q domain.ListingQuery) ([]domain.Listing, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT ` + listingCols + ` FROM listings WHERE 1=1` + "\n")
	if q.Status != "" {
		sb.WriteString("  AND status = " + arg(q.Status) + "\n")
	}
	if q.Source != "" {
		sb.WriteString("  AND source = " + arg(q.Source) + "\n")
	}
	if q.City != "" {
		sb.WriteString("  AND lower(city) = lower(" + arg(q.City) + ")\n")
	}
	if q.Since != nil {
		sb.WriteString("  AND start_utc >= " + arg(*q.Since) + "\n")
	}
	if q.Until != nil {
		sb.WriteString("  AND start_utc < " + arg(*q.Until) + "\n")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	sb.WriteString("ORDER BY start_utc ASC NULLS LAST, id ASC LIMIT " + arg(limit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "list listings failed")
	}
	defer rows.Close()

	out := make([]domain.Listing, 0, limit)
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID, &l.Source, &l.SourceID, &l.Title, &l.Description, &l.VenueName,
			&l.Address, &l.City, &l.Region, &l.URL, &l.SignupURL, &l.StartUTC,
			&l.DayOfWeek, &l.TimeText, &l.Recurrence, &l.Status, &l.ScrapedHash,
			&l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, perr.FromPostgres(err, "scan listing failed")
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const leadCols = `id::text, url, source, title, snippet, raw, normalized, seen_hash, status::text, created_at, updated_at, reviewed_at`

// UpsertLead implements Storage.
// The URL is the identity; the uuid is minted once on first insert, raw and
// normalized forms refresh every crawl and the review status survives
func (s *pg) UpsertLead(ctx context.Context, l domain.Lead) (domain.Lead, error) {
	sql := `
		INSERT INTO leads (id, url, source, title, snippet, raw, normalized, seen_hash, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9, now(), now())
		ON CONFLICT (url) DO UPDATE SET
			title = EXCLUDED.title,
			snippet = EXCLUDED.snippet,
			raw = EXCLUDED.raw,
			normalized = EXCLUDED.normalized,
			seen_hash = EXCLUDED.seen_hash,
			updated_at = now()
		RETURNING ` + leadCols

	var out domain.Lead
	var status string
	err := s.q.QueryRow(ctx, sql,
		uuid.NewString(), l.URL, l.Source, l.Title, l.Snippet, l.Raw, l.Normalized,
		l.SeenHash, string(domain.LeadStatusNew),
	).Scan(
		&out.ID, &out.URL, &out.Source, &out.Title, &out.Snippet, &out.Raw,
		&out.Normalized, &out.SeenHash, &status, &out.CreatedAt, &out.UpdatedAt,
		&out.ReviewedAt,
	)
	if err != nil {
		return domain.Lead{}, perr.FromPostgres(err, "upsert lead failed")
	}
	out.Status = domain.LeadStatus(status)
	return out, nil
}

// UpdateLeadStatus implements Storage
func (s *pg) UpdateLeadStatus(ctx context.Context, id string, status domain.LeadStatus) (domain.Lead, error) {
	sql := `
		UPDATE leads
		SET status = $2, reviewed_at = now(), updated_at = now()
		WHERE id = $1::uuid
		RETURNING ` + leadCols

	var out domain.Lead
	var st string
	err := s.q.QueryRow(ctx, sql, id, string(status)).Scan(
		&out.ID, &out.URL, &out.Source, &out.Title, &out.Snippet, &out.Raw,
		&out.Normalized, &out.SeenHash, &st, &out.CreatedAt, &out.UpdatedAt,
		&out.ReviewedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Lead{}, perr.NotFoundf("lead %s not found", id)
		}
		return domain.Lead{}, perr.FromPostgres(err, "update lead status failed")
	}
	out.Status = domain.LeadStatus(st)
	return out, nil
}

// ListLeads implements Storage
func (s *pg) ListLeads(ctx context.Context, q domain.LeadQuery) ([]domain.Lead, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT ` + leadCols + ` FROM leads WHERE 1=1` + "\n")
	if q.Status != "" {
		sb.WriteString("  AND status = " + arg(q.Status) + "\n")
	}
	if q.Source != "" {
		sb.WriteString("  AND source = " + arg(q.Source) + "\n")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	sb.WriteString("ORDER BY updated_at DESC, id LIMIT " + arg(limit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "list leads failed")
	}
	defer rows.Close()

	out := make([]domain.Lead, 0, limit)
	for rows.Next() {
		var l domain.Lead
		var st string
		if err := rows.Scan(
			&l.ID, &l.URL, &l.Source, &l.Title, &l.Snippet, &l.Raw, &l.Normalized,
			&l.SeenHash, &st, &l.CreatedAt, &l.UpdatedAt, &l.ReviewedAt,
		); err != nil {
			return nil, perr.FromPostgres(err, "scan lead failed")
		}
		l.Status = domain.LeadStatus(st)
		out = append(out, l)
	}
	return out, rows.Err()
}
