// Package domain holds the ingestion run and audit-log types
package domain

import (
	"context"
	"time"

	perr "micdrop/internal/platform/errors"
)

// LogEntry is one row of the ingestion audit trail, one per source per run
type LogEntry struct {
	ID        int64     `json:"id"`
	Source    string    `json:"source"`
	Succeeded bool      `json:"succeeded"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"ts"`
}

// LogQuery filters the audit trail
type LogQuery struct {
	Source string `json:"source,omitempty"`
	Limit  int    `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
}

// SourceReport summarizes one adapter's slice of a run
type SourceReport struct {
	Source     string `json:"source"`
	Succeeded  bool   `json:"succeeded"`
	Candidates int    `json:"candidates"`
	Created    int    `json:"created"`
	Updated    int    `json:"updated"`
	Leads      int    `json:"leads"`
	Message    string `json:"message,omitempty"`
}

// RunReport summarizes a whole ingestion pass
type RunReport struct {
	StartedAt  time.Time      `json:"started_at"`
	FinishedAt time.Time      `json:"finished_at"`
	Sources    []SourceReport `json:"sources"`
}

// ErrRunInFlight is returned when a manual run overlaps the scheduled one
var ErrRunInFlight = perr.Conflictf("ingest run already in flight")

// RunnerPort triggers ingestion passes
type RunnerPort interface {
	RunNow(ctx context.Context) (RunReport, error)
}

// LogPort reads the audit trail
type LogPort interface {
	Log(ctx context.Context, q LogQuery) ([]LogEntry, error)
}
