package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSON(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusCreated, map[string]string{"hello": "world"})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var got map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got["hello"] != "world" {
		t.Fatalf("body = %+v", got)
	}
}

func TestJSONNilPayload(t *testing.T) {
	w := httptest.NewRecorder()
	JSON(w, http.StatusOK, nil)
	if strings.TrimSpace(w.Body.String()) != "null" {
		t.Fatalf("body = %q", w.Body.String())
	}
}

func TestJSONError(t *testing.T) {
	w := httptest.NewRecorder()
	JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "unauthorized" || resp.Message != "" || resp.Details != nil {
		t.Fatalf("resp = %+v", resp)
	}
}

func TestJSONErrorMessage(t *testing.T) {
	w := httptest.NewRecorder()
	JSONErrorMessage(w, http.StatusUnprocessableEntity, "validation_failed", "Revisa los campos", map[string]string{"name": "required"})

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error != "validation_failed" || resp.Message != "Revisa los campos" {
		t.Fatalf("resp = %+v", resp)
	}
	details, ok := resp.Details.(map[string]any)
	if !ok || details["name"] != "required" {
		t.Fatalf("details = %#v", resp.Details)
	}
}

func TestDecodeJSONRejectsUnknownFields(t *testing.T) {
	var target struct {
		Name string `json:"name"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","bogus":1}`))
	if err := DecodeJSON(req, &target); err == nil {
		t.Fatal("unknown field accepted")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a"}`))
	if err := DecodeJSON(req, &target); err != nil {
		t.Fatalf("valid body rejected: %v", err)
	}
	if target.Name != "a" {
		t.Fatalf("name = %q", target.Name)
	}
}
