package module

import "micdrop/internal/services/ingest/domain"

// Ports exposed by the ingest module
type Ports struct {
	Runner domain.RunnerPort
	Log    domain.LogPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
