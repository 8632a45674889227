package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/models"
)

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Client{}, &models.Product{}, &models.Invoice{}, &models.InvoiceItem{}, &models.CompanySettings{}, &models.UserPreferences{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return New(db, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestHealth(t *testing.T) {
	handler := setupRouter(t)

	for _, path := range []string{"/health", "/healthz"} {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200 got %d", path, w.Code)
		}
		if rid := w.Header().Get("X-Request-ID"); rid == "" {
			t.Fatalf("%s: missing request id header", path)
		}
	}
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	handler := setupRouter(t)

	paths := []struct{ method, path string }{
		{http.MethodGet, "/clients"},
		{http.MethodGet, "/products"},
		{http.MethodGet, "/invoices"},
		{http.MethodGet, "/settings/company"},
		{http.MethodGet, "/reports/summary"},
		{http.MethodGet, "/export/invoices.csv"},
		{http.MethodGet, "/me"},
	}
	for _, p := range paths {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(p.method, p.path, nil))
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 got %d", p.method, p.path, w.Code)
		}
	}
}

func TestSignupThenAuthenticatedRequest(t *testing.T) {
	handler := setupRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"r@test.com","password":"secret123"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("signup: expected 201 got %d body=%s", w.Code, w.Body.String())
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("signup must set a session cookie")
	}

	// The session cookie authenticates follow-up requests end to end.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/clients", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("authed list: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	var list struct {
		Items []models.Client `json:"items"`
		Total int64           `json:"total"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Total != 0 {
		t.Fatalf("fresh tenant should have no clients: %+v", list)
	}

	// A forged cookie is rejected by the same stack.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/clients", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "1.forgedsignature"})
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("forged cookie: expected 401 got %d", w.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	handler := setupRouter(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}
