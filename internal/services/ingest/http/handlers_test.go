package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	phttp "micdrop/internal/platform/net/http"
	"micdrop/internal/services/ingest/domain"
	ingesthttp "micdrop/internal/services/ingest/http"
)

type fakePorts struct {
	inFlight bool
	entries  []domain.LogEntry
	lastQ    domain.LogQuery
}

func (f *fakePorts) RunNow(context.Context) (domain.RunReport, error) {
	if f.inFlight {
		return domain.RunReport{}, domain.ErrRunInFlight
	}
	return domain.RunReport{Sources: []domain.SourceReport{{Source: "meetup", Succeeded: true}}}, nil
}

func (f *fakePorts) Log(_ context.Context, q domain.LogQuery) ([]domain.LogEntry, error) {
	f.lastQ = q
	return f.entries, nil
}

func newMux(f *fakePorts) *chi.Mux {
	mux := chi.NewRouter()
	ingesthttp.Register(phttp.AdaptChi(mux), f, f)
	return mux
}

func TestIngestRun_ReturnsReport(t *testing.T) {
	mux := newMux(&fakePorts{})

	req := httptest.NewRequest(http.MethodPost, "/ingest/run", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	var env struct {
		Data domain.RunReport `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.Sources) != 1 || env.Data.Sources[0].Source != "meetup" {
		t.Fatalf("report = %+v", env.Data)
	}
}

func TestIngestRun_ConflictWhenInFlight(t *testing.T) {
	mux := newMux(&fakePorts{inFlight: true})

	req := httptest.NewRequest(http.MethodPost, "/ingest/run", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status %d want 409: %s", rr.Code, rr.Body.String())
	}
}

func TestIngestLogQuery_PassesFilters(t *testing.T) {
	f := &fakePorts{entries: []domain.LogEntry{{Source: "meetup", Succeeded: true, Message: "ingested 3"}}}
	mux := newMux(f)

	req := httptest.NewRequest(http.MethodPost, "/ingest/log/query", strings.NewReader(`{"source":"meetup","limit":10}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if f.lastQ.Source != "meetup" || f.lastQ.Limit != 10 {
		t.Fatalf("query = %+v", f.lastQ)
	}
	var env struct {
		Data []domain.LogEntry `json:"data"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 1 || env.Data[0].Message != "ingested 3" {
		t.Fatalf("data = %+v", env.Data)
	}
}
