package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "micdrop/internal/platform/net/http"
	"micdrop/internal/platform/store/file"
	"micdrop/internal/services/listings/domain"
	listingshttp "micdrop/internal/services/listings/http"
	"micdrop/internal/services/listings/repo"
	"micdrop/internal/services/listings/service"
)

func newTestRouter(t *testing.T) (*chi.Mux, service.Service) {
	t.Helper()
	db, err := file.Open(filepath.Join(t.TempDir(), "db.json"))
	if err != nil {
		t.Fatalf("file.Open: %v", err)
	}
	svc := service.New(repo.NewFile(db), service.Config{})
	mux := chi.NewRouter()
	listingshttp.Register(phttp.AdaptChi(mux), svc)
	return mux, svc
}

func TestListingsQuery_ReturnsSeededRows(t *testing.T) {
	mux, svc := newTestRouter(t)

	_, err := svc.SaveCandidate(context.Background(), domain.Listing{
		Source:    "websearch",
		Title:     "Velvet Mic",
		VenueName: "Velvet Room",
		City:      "Austin",
		URL:       "https://badslava.com/velvet",
	}, "DOW:3")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/listings/query", strings.NewReader(`{"city":"Austin"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var env struct {
		Data []domain.Listing `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].Title != "Velvet Mic" {
		t.Fatalf("data = %+v", env.Data)
	}
}

func TestListingsQuery_LimitValidation(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/listings/query", strings.NewReader(`{"limit":100000}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d want 400: %s", rr.Code, rr.Body.String())
	}
}

func TestLeadReviewFlow(t *testing.T) {
	mux, svc := newTestRouter(t)

	lead, err := svc.RecordLead(context.Background(), domain.LeadInput{
		URL:    "https://badslava.com/austin",
		Source: "websearch",
		Title:  "Austin mics",
	})
	if err != nil {
		t.Fatalf("seed lead: %v", err)
	}

	req := httptest.NewRequest(http.MethodPatch, "/leads/"+lead.ID, strings.NewReader(`{"status":"APPROVED"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("patch status %d: %s", rr.Code, rr.Body.String())
	}

	var env struct {
		Data domain.Lead `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Data.Status != domain.LeadStatusApproved || env.Data.ReviewedAt == nil {
		t.Fatalf("review not applied: %+v", env.Data)
	}

	// the query endpoint must now see the reviewed lead
	req = httptest.NewRequest(http.MethodPost, "/leads/query", strings.NewReader(`{"status":"APPROVED"}`))
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("query status %d: %s", rr.Code, rr.Body.String())
	}
	var listEnv struct {
		Data []domain.Lead `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &listEnv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(listEnv.Data) != 1 {
		t.Fatalf("approved leads = %d, want 1", len(listEnv.Data))
	}
}

func TestLeadReview_UnknownStatusRejected(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPatch, "/leads/some-id", strings.NewReader(`{"status":"MAYBE"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status %d want 422: %s", rr.Code, rr.Body.String())
	}
}

func TestLeadStatuses_StaticTable(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/leads/statuses", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var env struct {
		Data []string `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 5 || env.Data[0] != "NEW" {
		t.Fatalf("statuses = %v", env.Data)
	}
}
