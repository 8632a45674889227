package handlers

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/models"
	"github.com/facturapro/facturapro/internal/services"
)

var testNow = time.Date(2026, time.August, 15, 10, 0, 0, 0, time.UTC)

func newTestInvoiceHandler(db *gorm.DB) *InvoiceHandler {
	h := NewInvoiceHandler(db, services.NewInvoiceService(db))
	h.Now = func() time.Time { return testNow }
	return h
}

func seedInvoiceTenant(t *testing.T, db *gorm.DB, email string) (models.User, models.Client) {
	t.Helper()
	user := seedTenant(t, db, email)
	client := models.Client{UserID: user.ID, Name: "Acme SL", Email: "acme@test"}
	if err := db.Create(&client).Error; err != nil {
		t.Fatalf("seed client: %v", err)
	}
	return user, client
}

func TestInvoiceCreate(t *testing.T) {
	db := setupHandlerDB(t)
	user, client := seedInvoiceTenant(t, db, "inv@test")
	h := newTestInvoiceHandler(db)

	body := `{"client_id":` + strconv.Itoa(int(client.ID)) + `,"issue_date":"2026-08-01","due_date":"2026-08-31","items":[` +
		`{"description":"Consulting","quantity":2,"unit_price":100,"tax_rate":21},` +
		`{"description":"Hosting","quantity":1,"unit_price":50,"tax_rate":10}]}`
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/invoices", body, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d body=%s", w.Code, w.Body.String())
	}

	var created struct {
		models.Invoice
		EffectiveStatus models.InvoiceStatus `json:"effective_status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Number != "FAC-2026-0001" {
		t.Fatalf("number = %q", created.Number)
	}
	if math.Abs(created.Subtotal-250) > 1e-9 || math.Abs(created.TaxAmount-47) > 1e-9 || math.Abs(created.TotalAmount-297) > 1e-9 {
		t.Fatalf("totals = %v/%v/%v", created.Subtotal, created.TaxAmount, created.TotalAmount)
	}
	if created.Status != models.InvoiceStatusDraft || created.EffectiveStatus != models.InvoiceStatusDraft {
		t.Fatalf("status = %s/%s", created.Status, created.EffectiveStatus)
	}
	if created.Currency != "EUR" {
		t.Fatalf("currency = %q", created.Currency)
	}
}

func TestInvoiceCreateRejectsEmptyItems(t *testing.T) {
	db := setupHandlerDB(t)
	user, client := seedInvoiceTenant(t, db, "inv0@test")
	h := newTestInvoiceHandler(db)

	body := `{"client_id":` + strconv.Itoa(int(client.ID)) + `,"issue_date":"2026-08-01","due_date":"2026-08-31","items":[]}`
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/invoices", body, user.ID))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Details["items"] != "no_items" {
		t.Fatalf("violations = %+v", resp.Details)
	}

	var count int64
	db.Model(&models.Invoice{}).Count(&count)
	if count != 0 {
		t.Fatal("invoice persisted despite validation failure")
	}
}

func TestInvoiceCreateRejectsBadDates(t *testing.T) {
	db := setupHandlerDB(t)
	user, client := seedInvoiceTenant(t, db, "invd@test")
	h := newTestInvoiceHandler(db)

	body := `{"client_id":` + strconv.Itoa(int(client.ID)) + `,"issue_date":"01/08/2026","due_date":"","items":[{"description":"x","quantity":1,"unit_price":1,"tax_rate":0}]}`
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/invoices", body, user.ID))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", w.Code)
	}
	var resp struct {
		Details map[string]string `json:"details"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Details["issue_date"] != "invalid_value" || resp.Details["due_date"] != "required" {
		t.Fatalf("violations = %+v", resp.Details)
	}
}

func TestInvoiceListStatusFilters(t *testing.T) {
	db := setupHandlerDB(t)
	user, client := seedInvoiceTenant(t, db, "invl@test")
	h := newTestInvoiceHandler(db)

	issue := testNow.AddDate(0, 0, -40)
	mk := func(number string, status models.InvoiceStatus, due time.Time) {
		inv := models.Invoice{UserID: user.ID, ClientID: client.ID, Number: number, Status: status, IssueDate: issue, DueDate: due, TotalAmount: 100, Currency: "EUR"}
		if err := db.Create(&inv).Error; err != nil {
			t.Fatalf("seed %s: %v", number, err)
		}
	}
	mk("FAC-2026-0001", models.InvoiceStatusSent, testNow.AddDate(0, 0, -5)) // overdue
	mk("FAC-2026-0002", models.InvoiceStatusSent, testNow.AddDate(0, 0, 5)) // still pending
	mk("FAC-2026-0003", models.InvoiceStatusPaid, testNow.AddDate(0, 0, 5))
	mk("FAC-2026-0004", models.InvoiceStatusDraft, testNow.AddDate(0, 1, 0))

	list := func(query string) (items []struct {
		Number          string               `json:"number"`
		Status          models.InvoiceStatus `json:"status"`
		EffectiveStatus models.InvoiceStatus `json:"effective_status"`
	}, total int64) {
		w := httptest.NewRecorder()
		h.List(w, authedRequest(t, http.MethodGet, "/invoices"+query, "", user.ID))
		if w.Code != http.StatusOK {
			t.Fatalf("list %s: expected 200 got %d", query, w.Code)
		}
		var resp struct {
			Items json.RawMessage `json:"items"`
			Total int64           `json:"total"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if err := json.Unmarshal(resp.Items, &items); err != nil {
			t.Fatalf("decode items: %v", err)
		}
		return items, resp.Total
	}

	all, total := list("")
	if len(all) != 4 || total != 4 {
		t.Fatalf("all: got %d/%d", len(all), total)
	}

	overdue, _ := list("?status=overdue")
	if len(overdue) != 1 || overdue[0].Number != "FAC-2026-0001" {
		t.Fatalf("overdue filter: %+v", overdue)
	}
	if overdue[0].Status != models.InvoiceStatusSent || overdue[0].EffectiveStatus != models.InvoiceStatusOverdue {
		t.Fatalf("overdue row: stored=%s effective=%s", overdue[0].Status, overdue[0].EffectiveStatus)
	}

	sent, _ := list("?status=sent")
	if len(sent) != 1 || sent[0].Number != "FAC-2026-0002" {
		t.Fatalf("sent filter: %+v", sent)
	}

	paid, _ := list("?status=paid")
	if len(paid) != 1 || paid[0].Number != "FAC-2026-0003" {
		t.Fatalf("paid filter: %+v", paid)
	}

	byNumber, _ := list("?q=0003")
	if len(byNumber) != 1 || byNumber[0].Number != "FAC-2026-0003" {
		t.Fatalf("q filter: %+v", byNumber)
	}
}

func TestInvoiceUpdateReplacesItems(t *testing.T) {
	db := setupHandlerDB(t)
	user, client := seedInvoiceTenant(t, db, "invu@test")
	h := newTestInvoiceHandler(db)

	body := `{"client_id":` + strconv.Itoa(int(client.ID)) + `,"issue_date":"2026-08-01","due_date":"2026-08-31","items":[{"description":"Old","quantity":1,"unit_price":10,"tax_rate":21}]}`
	w := httptest.NewRecorder()
	h.Create(w, authedRequest(t, http.MethodPost, "/invoices", body, user.ID))
	if w.Code != http.StatusCreated {
		t.Fatalf("create: %d", w.Code)
	}
	var created models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	idStr := strconv.Itoa(int(created.ID))

	update := `{"client_id":` + strconv.Itoa(int(client.ID)) + `,"issue_date":"2026-08-01","due_date":"2026-09-15","items":[{"description":"New","quantity":3,"unit_price":100,"tax_rate":10}]}`
	w = httptest.NewRecorder()
	req := authedRequest(t, http.MethodPut, "/invoices/"+idStr, update, user.ID)
	req.SetPathValue("id", idStr)
	h.Update(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("update: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	// Re-read and verify item replacement and preserved number.
	w = httptest.NewRecorder()
	req = authedRequest(t, http.MethodGet, "/invoices/"+idStr, "", user.ID)
	req.SetPathValue("id", idStr)
	h.Get(w, req)
	var got models.Invoice
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Number != created.Number {
		t.Fatalf("number changed on update: %q -> %q", created.Number, got.Number)
	}
	if len(got.Items) != 1 || got.Items[0].Description != "New" {
		t.Fatalf("items not replaced: %+v", got.Items)
	}
	if math.Abs(got.TotalAmount-330) > 1e-9 {
		t.Fatalf("total = %v", got.TotalAmount)
	}
}

func TestInvoiceTenantIsolation(t *testing.T) {
	db := setupHandlerDB(t)
	user, client := seedInvoiceTenant(t, db, "invown@test")
	intruder := seedTenant(t, db, "invintr@test")
	h := newTestInvoiceHandler(db)

	issue := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	inv := models.Invoice{UserID: user.ID, ClientID: client.ID, Number: "FAC-2026-0001", Status: models.InvoiceStatusDraft, IssueDate: issue, DueDate: issue.AddDate(0, 1, 0), Currency: "EUR"}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	idStr := strconv.Itoa(int(inv.ID))

	w := httptest.NewRecorder()
	req := authedRequest(t, http.MethodGet, "/invoices/"+idStr, "", intruder.ID)
	req.SetPathValue("id", idStr)
	h.Get(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = authedRequest(t, http.MethodDelete, "/invoices/"+idStr, "", intruder.ID)
	req.SetPathValue("id", idStr)
	h.Delete(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", w.Code)
	}
}

func TestInvoiceSetStatus(t *testing.T) {
	db := setupHandlerDB(t)
	user, client := seedInvoiceTenant(t, db, "invs@test")
	h := newTestInvoiceHandler(db)

	issue := time.Date(2026, time.July, 1, 0, 0, 0, 0, time.UTC)
	inv := models.Invoice{UserID: user.ID, ClientID: client.ID, Number: "FAC-2026-0001", Status: models.InvoiceStatusDraft, IssueDate: issue, DueDate: issue.AddDate(0, 1, 0), Currency: "EUR"}
	if err := db.Create(&inv).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	idStr := strconv.Itoa(int(inv.ID))

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := authedRequest(t, http.MethodPost, "/invoices/"+idStr+"/status", body, user.ID)
		req.SetPathValue("id", idStr)
		h.SetStatus(w, req)
		return w
	}

	if w := post(`{"status":"sent"}`); w.Code != http.StatusOK {
		t.Fatalf("draft->sent: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	// sent -> draft is a legal rollback.
	if w := post(`{"status":"draft"}`); w.Code != http.StatusOK {
		t.Fatalf("sent->draft: expected 200 got %d", w.Code)
	}
	// draft -> paid skips a step.
	if w := post(`{"status":"paid"}`); w.Code != http.StatusConflict {
		t.Fatalf("draft->paid: expected 409 got %d", w.Code)
	}
	// overdue may never be stored.
	if w := post(`{"status":"overdue"}`); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("store overdue: expected 422 got %d", w.Code)
	}
}
