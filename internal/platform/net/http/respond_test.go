package http_test

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"testing"

	perr "micdrop/internal/platform/errors"
	phttp "micdrop/internal/platform/net/http"
)

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) phttp.Envelope {
	t.Helper()
	var env phttp.Envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return env
}

func TestHandle_OK(t *testing.T) {
	h := phttp.Handle(func(r *stdhttp.Request) phttp.Response {
		return phttp.OK(map[string]any{"mics": 3})
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/listings", nil)
	rr := httptest.NewRecorder()
	h(rr, req)

	if rr.Code != stdhttp.StatusOK {
		t.Fatalf("status %d want 200", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if env.StatusCode != stdhttp.StatusOK || env.Error != "" {
		t.Fatalf("envelope mismatch: %+v", env)
	}
	data, ok := env.Data.(map[string]any)
	if !ok || data["mics"] != float64(3) {
		t.Fatalf("data mismatch: %+v", env.Data)
	}
}

func TestHandle_ErrorBodyMapsStatus(t *testing.T) {
	h := phttp.Handle(func(r *stdhttp.Request) phttp.Response {
		return phttp.Error(perr.Policyf("robots disallow"))
	})

	req := httptest.NewRequest(stdhttp.MethodGet, "/x", nil)
	rr := httptest.NewRecorder()
	h(rr, req)

	if rr.Code != stdhttp.StatusForbidden {
		t.Fatalf("status %d want 403", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	if env.Code != perr.ErrorCodePolicy {
		t.Fatalf("code %v want policy", env.Code)
	}
	if env.Error == "" {
		t.Fatalf("expected error message")
	}
}

func TestHandle_NoContent(t *testing.T) {
	h := phttp.Handle(func(r *stdhttp.Request) phttp.Response {
		return phttp.NoContent()
	})

	req := httptest.NewRequest(stdhttp.MethodDelete, "/x", nil)
	rr := httptest.NewRecorder()
	h(rr, req)

	if rr.Code != stdhttp.StatusNoContent {
		t.Fatalf("status %d want 204", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %q", rr.Body.String())
	}
}

func TestList_WrapsItemsAndPage(t *testing.T) {
	resp := phttp.List([]string{"a", "b"}, 10, 2, 5)
	if resp.Status != stdhttp.StatusOK {
		t.Fatalf("status %d want 200", resp.Status)
	}
}
