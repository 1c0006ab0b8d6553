// Package stub is a placeholder adapter kept wired for local smoke runs
package stub

import (
	"context"

	"micdrop/internal/adapters/source"
)

// Adapter returns nothing unless explicitly enabled
type Adapter struct {
	enabled bool
}

// New constructs the stub adapter
func New(enabled bool) *Adapter { return &Adapter{enabled: enabled} }

// Name satisfies source.Adapter
func (a *Adapter) Name() string { return "stub" }

// Enabled satisfies source.Adapter
func (a *Adapter) Enabled() bool { return a.enabled }

// Fetch satisfies source.Adapter with an empty batch
func (a *Adapter) Fetch(context.Context, source.FetchArgs) (source.Batch, error) {
	return source.Batch{}, nil
}
