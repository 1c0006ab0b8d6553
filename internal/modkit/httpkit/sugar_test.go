package httpkit_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"micdrop/internal/modkit/httpkit"
	phttp "micdrop/internal/platform/net/http"
)

func TestPostJSON_BindsAndResponds(t *testing.T) {
	type in struct {
		City string `json:"city" validate:"required"`
	}

	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)

	httpkit.PostJSON(r, "/listings/query", func(_ *http.Request, body in) (any, error) {
		return map[string]string{"city": body.City}, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/listings/query", strings.NewReader(`{"city":"Austin"}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d want 200: %s", rr.Code, rr.Body.String())
	}
	var env phttp.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	data, _ := env.Data.(map[string]any)
	if data["city"] != "Austin" {
		t.Fatalf("data mismatch: %+v", env.Data)
	}
}

func TestPostJSON_ValidationFailureIs400(t *testing.T) {
	type in struct {
		City string `json:"city" validate:"required"`
	}

	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)

	httpkit.PostJSON(r, "/listings/query", func(_ *http.Request, body in) (any, error) {
		t.Fatal("handler must not run on validation failure")
		return nil, nil
	})

	req := httptest.NewRequest(http.MethodPost, "/listings/query", strings.NewReader(`{}`))
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status %d want 400: %s", rr.Code, rr.Body.String())
	}
}

func TestGet_NoBodyHandler(t *testing.T) {
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)

	httpkit.Get(r, "/healthz", func(_ *http.Request) (any, error) {
		return map[string]string{"status": "ok"}, nil
	})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d want 200", rr.Code)
	}
}

func TestMountUnder_AppliesPrefix(t *testing.T) {
	mux := chi.NewRouter()
	r := phttp.AdaptChi(mux)

	httpkit.MountUnder(r, "/api/v1", nil, func(sub httpkit.Router) {
		httpkit.Get(sub, "/leads", func(_ *http.Request) (any, error) {
			return []string{}, nil
		})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status %d want 200", rr.Code)
	}
}
