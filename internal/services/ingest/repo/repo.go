// Package repo provides the ingest audit-log repository implementations
package repo

import (
	"context"
	"fmt"
	"strings"

	"micdrop/internal/modkit/repokit"
	perr "micdrop/internal/platform/errors"
	"micdrop/internal/services/ingest/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the ingest log repository
type Storage interface {
	Append(ctx context.Context, e domain.LogEntry) error
	List(ctx context.Context, q domain.LogQuery) ([]domain.LogEntry, error)
}

// Append implements Storage
func (s *pg) Append(ctx context.Context, e domain.LogEntry) error {
	_, err := s.q.Exec(ctx,
		`INSERT INTO ingest_log (source, succeeded, message, ts) VALUES ($1, $2, $3, now())`,
		e.Source, e.Succeeded, e.Message,
	)
	if err != nil {
		return perr.FromPostgres(err, "append ingest log failed")
	}
	return nil
}

// List implements Storage
func (s *pg) List(ctx context.Context, q domain.LogQuery) ([]domain.LogEntry, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString("SELECT id, source, succeeded, message, ts FROM ingest_log WHERE 1=1\n")
	if q.Source != "" {
		sb.WriteString("  AND source = " + arg(q.Source) + "\n")
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	sb.WriteString("ORDER BY ts DESC, id DESC LIMIT " + arg(limit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, perr.FromPostgres(err, "list ingest log failed")
	}
	defer rows.Close()

	out := make([]domain.LogEntry, 0, limit)
	for rows.Next() {
		var e domain.LogEntry
		if err := rows.Scan(&e.ID, &e.Source, &e.Succeeded, &e.Message, &e.Timestamp); err != nil {
			return nil, perr.FromPostgres(err, "scan ingest log failed")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
