package bind_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "micdrop/internal/platform/errors"
	"micdrop/internal/platform/net/http/bind"
)

type queryPayload struct {
	City      string `json:"city" validate:"required,min=2"`
	DayOfWeek *int   `json:"day_of_week" validate:"omitempty,weekday"`
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/listings/query", strings.NewReader(body))
}

func TestParseJSON_HappyPath(t *testing.T) {
	got, err := bind.ParseJSON[queryPayload](post(`{"city":"Austin"}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if got.City != "Austin" {
		t.Fatalf("city = %q", got.City)
	}
}

func TestParseJSON_EmptyBodyIsJSONError(t *testing.T) {
	_, err := bind.ParseJSON[queryPayload](post(""))
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want json error, got %v", err)
	}
}

func TestParseJSON_EmptyBodyOKForGet(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", strings.NewReader(""))
	got, err := bind.ParseJSON[queryPayload](req)
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if got.City != "" {
		t.Fatalf("expected zero payload, got %+v", got)
	}
}

func TestParseJSON_UnknownFieldRejected(t *testing.T) {
	_, err := bind.ParseJSON[queryPayload](post(`{"city":"Austin","nope":1}`))
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want json error, got %v", err)
	}
}

func TestParseJSON_TrailingDataRejected(t *testing.T) {
	_, err := bind.ParseJSON[queryPayload](post(`{"city":"Austin"}{"city":"Denver"}`))
	if !perr.IsCode(err, perr.ErrorCodeJSON) {
		t.Fatalf("want json error, got %v", err)
	}
}

func TestParseJSON_ValidationUsesJSONTagNames(t *testing.T) {
	_, err := bind.ParseJSON[queryPayload](post(`{"city":"A"}`))
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}
	if !strings.Contains(err.Error(), "city") {
		t.Fatalf("message should name the json field: %v", err)
	}
}

func TestParseJSON_WeekdayTag(t *testing.T) {
	_, err := bind.ParseJSON[queryPayload](post(`{"city":"Austin","day_of_week":9}`))
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("want validation error, got %v", err)
	}

	got, err := bind.ParseJSON[queryPayload](post(`{"city":"Austin","day_of_week":2}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if got.DayOfWeek == nil || *got.DayOfWeek != 2 {
		t.Fatalf("day_of_week = %v", got.DayOfWeek)
	}
}
