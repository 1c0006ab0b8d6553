// Package source defines the contract ingestion adapters implement
package source

import (
	"context"
	"time"

	"micdrop/internal/core/normalize"
)

// RawCandidate re-exports the normalizer input schema adapters emit
type RawCandidate = normalize.RawCandidate

// RawLead is an allowlisted search hit routed to the lead review pipeline
type RawLead struct {
	Source  string
	URL     string
	Title   string
	Snippet string
	Raw     string // payload as received from the source, for review tooling
}

// FetchArgs carries the per-run query parameters shared by all adapters
type FetchArgs struct {
	Cities      []string
	RadiusMiles int
	WindowDays  int
	Now         time.Time
}

// Batch is one adapter's output for a run
type Batch struct {
	Candidates []RawCandidate
	Leads      []RawLead
}

// Adapter fetches raw candidates from one external source.
// Adapters only read the network; they never touch the store
type Adapter interface {
	Name() string
	Enabled() bool
	Fetch(ctx context.Context, args FetchArgs) (Batch, error)
}
