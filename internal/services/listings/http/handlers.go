// Package http provides http transport for listings and leads
package http

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"

	"micdrop/internal/modkit/httpkit"
	"micdrop/internal/services/listings/domain"
	svc "micdrop/internal/services/listings/service"
)

// Register mounts listings endpoints on the given router
func Register(r httpkit.Router, s svc.Service) {
	h := &handlers{svc: s}
	httpkit.PostJSON[domain.ListingQuery](r, "/listings/query", h.listings)
	httpkit.PostJSON[domain.LeadQuery](r, "/leads/query", h.leads)
	httpkit.PatchJSON[reviewInput](r, "/leads/{id}", h.review)
	httpkit.Get(r, "/leads/statuses", h.statuses)
}

type handlers struct{ svc svc.Service }

type reviewInput struct {
	Status string `json:"status" validate:"required"`
}

func (h *handlers) listings(r *stdhttp.Request, in domain.ListingQuery) (any, error) {
	return h.svc.Listings(r.Context(), in)
}

func (h *handlers) leads(r *stdhttp.Request, in domain.LeadQuery) (any, error) {
	if in.Status != "" {
		if _, err := domain.ParseLeadStatus(in.Status); err != nil {
			return nil, err
		}
	}
	return h.svc.Leads(r.Context(), in)
}

func (h *handlers) review(r *stdhttp.Request, in reviewInput) (any, error) {
	status, err := domain.ParseLeadStatus(in.Status)
	if err != nil {
		return nil, err
	}
	return h.svc.ReviewLead(r.Context(), chi.URLParam(r, "id"), status)
}

func (h *handlers) statuses(*stdhttp.Request) (any, error) {
	return domain.LeadStatuses(), nil
}
