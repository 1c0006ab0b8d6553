// Package store provides a unified interface over the configured storage backend
package store

import (
	"context"
	"errors"
	"fmt"

	"micdrop/internal/platform/logger"
	"micdrop/internal/platform/store/file"
)

// Store is the facade for the storage backend selected at startup.
// Exactly one of PG or File is non-nil after Open; repos bind to whichever
// is present so call sites never branch on configuration
type Store struct {
	// Log is the logger used by subclients
	// zero means a no op zerolog logger
	Log logger.Logger

	// PG is the postgres sql seam, nil when the file backend is selected
	PG TxRunner

	// File is the flat-file document seam, nil when postgres is selected
	File *file.DB
}

// Row exposes the minimal scan contract a single row needs
type Row interface {
	Scan(dest ...any) error
}

// Rows exposes the minimal iteration and scan for a result set
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
	Columns() []string
}

// CommandTag is a tiny interface to inspect command results
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the read and write surface repos use for sql
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner wraps transaction execution around a function
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Pinger is any seam that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store with the backend requested in cfg.
// The choice happens exactly once here; everything downstream is backend-agnostic
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// defaults for zero logger to avoid nil checks
	s.Log = s.Log.With().Logger()

	switch cfg.Backend {
	case BackendPostgres:
		pgClient, err := openPG(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.PG = pgClient
	case BackendFile:
		db, err := file.Open(cfg.File.Path)
		if err != nil {
			return nil, err
		}
		s.File = db
	default:
		return nil, fmt.Errorf("store: unknown backend %q", cfg.Backend)
	}

	return s, nil
}

// Guard verifies the configured seam is reachable
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	if s.PG != nil {
		if p, ok := any(s.PG).(Pinger); ok {
			if err := p.Ping(ctx); err != nil {
				return fmt.Errorf("pg: %w", err)
			}
		}
	}
	// file backend: Open already validated the parent directory
	return nil
}

// Close closes the initialized backend gracefully
func (s *Store) Close(context.Context) error {
	var errs []error

	if s.File != nil {
		if e := s.File.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	if c, ok := s.PG.(interface{ Close() error }); ok {
		if e := c.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	return errors.Join(errs...)
}
