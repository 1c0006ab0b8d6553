package module

import "micdrop/internal/services/listings/domain"

// Ports exposed by the listings module
type Ports struct {
	Writer domain.WriterPort
	Query  domain.QueryPort
	Review domain.ReviewPort
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
