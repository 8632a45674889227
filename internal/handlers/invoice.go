package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/auth"
	"github.com/facturapro/facturapro/internal/httpx"
	"github.com/facturapro/facturapro/internal/models"
	"github.com/facturapro/facturapro/internal/services"
	"github.com/facturapro/facturapro/internal/validation"
)

type InvoiceHandler struct {
	DB  *gorm.DB
	Svc *services.InvoiceService
	// Now is injectable for deterministic overdue derivation in tests.
	Now func() time.Time
}

func NewInvoiceHandler(db *gorm.DB, svc *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{DB: db, Svc: svc, Now: time.Now}
}

type invoiceItemRequest struct {
	ProductID   *uint   `json:"product_id"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TaxRate     float64 `json:"tax_rate"`
}

type invoiceRequest struct {
	ClientID  uint                 `json:"client_id"`
	Number    string               `json:"number"`
	Status    string               `json:"status"`
	IssueDate string               `json:"issue_date"`
	DueDate   string               `json:"due_date"`
	Currency  string               `json:"currency"`
	Notes     string               `json:"notes"`
	Items     []invoiceItemRequest `json:"items"`
}

// invoiceResponse decorates the stored invoice with the derived display
// status.
type invoiceResponse struct {
	models.Invoice
	EffectiveStatus models.InvoiceStatus `json:"effective_status"`
}

func (h *InvoiceHandler) render(inv models.Invoice, now time.Time) invoiceResponse {
	return invoiceResponse{Invoice: inv, EffectiveStatus: inv.EffectiveStatus(now)}
}

func parseDate(field, value string, v validation.Violations) time.Time {
	if strings.TrimSpace(value) == "" {
		v[field] = "required"
		return time.Time{}
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		v[field] = "invalid_value"
		return time.Time{}
	}
	return t
}

func (h *InvoiceHandler) decode(r *http.Request, userID uint) (*models.Invoice, []models.InvoiceItem, validation.Violations, bool) {
	var req invoiceRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return nil, nil, nil, false
	}

	v := make(validation.Violations)
	issue := parseDate("issue_date", req.IssueDate, v)
	due := parseDate("due_date", req.DueDate, v)

	status := models.InvoiceStatus(req.Status)
	if req.Status == "" {
		status = models.InvoiceStatusDraft
	}

	inv := &models.Invoice{
		UserID:    userID,
		ClientID:  req.ClientID,
		Number:    strings.TrimSpace(req.Number),
		Status:    status,
		IssueDate: issue,
		DueDate:   due,
		Currency:  strings.ToUpper(strings.TrimSpace(req.Currency)),
		Notes:     req.Notes,
	}

	items := make([]models.InvoiceItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.InvoiceItem{
			ProductID:   it.ProductID,
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			TaxRate:     it.TaxRate,
		})
	}
	return inv, items, v, true
}

func (h *InvoiceHandler) saveError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", verr.Violations)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		respondError(w, r, http.StatusConflict, "duplicate_number", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
	}
}

// List: GET /invoices?q=&status=&page=&limit=
//
// status=overdue filters on the derived state (sent + past due date); the
// stored column never holds "overdue".
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)
	now := h.Now()

	dbq := h.DB.Where("user_id = ?", userID)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		dbq = dbq.Where("lower(number) LIKE ?", likePattern(q))
	}
	switch status := r.URL.Query().Get("status"); models.InvoiceStatus(status) {
	case models.InvoiceStatusOverdue:
		dbq = dbq.Where("status = ? AND due_date < ?", models.InvoiceStatusSent, now)
	case models.InvoiceStatusSent:
		dbq = dbq.Where("status = ? AND due_date >= ?", models.InvoiceStatusSent, now)
	case models.InvoiceStatusDraft, models.InvoiceStatusPaid, models.InvoiceStatusCancelled:
		dbq = dbq.Where("status = ?", status)
	}

	var total int64
	dbq.Model(&models.Invoice{}).Count(&total)
	var invoices []models.Invoice
	if err := dbq.Preload("Client").Order("created_at desc, id desc").Limit(limit).Offset(offset).Find(&invoices).Error; err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	items := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, h.render(invoices[i], now))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /invoices
func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	inv, items, v, ok := h.decode(r, userID)
	if !ok {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	if err := h.Svc.Save(r.Context(), inv, items); err != nil {
		h.saveError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.render(*inv, h.Now()))
}

// Get: GET /invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	inv, err := h.Svc.Get(r.Context(), userID, id)
	if errors.Is(err, services.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, h.render(*inv, h.Now()))
}

// Update: PUT /invoices/{id}
//
// The submitted item set replaces the stored one wholesale, atomically.
func (h *InvoiceHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	existing, err := h.Svc.Get(r.Context(), userID, id)
	if errors.Is(err, services.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	inv, items, v, decoded := h.decode(r, userID)
	if !decoded {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	inv.ID = existing.ID
	inv.CreatedAt = existing.CreatedAt
	if inv.Number == "" {
		inv.Number = existing.Number
	}
	if err := h.Svc.Save(r.Context(), inv, items); err != nil {
		h.saveError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.render(*inv, h.Now()))
}

// Delete: DELETE /invoices/{id}
func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	err := h.Svc.Delete(r.Context(), userID, id)
	if errors.Is(err, services.ErrNotFound) {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=draft sent paid cancelled"`
}

// SetStatus: POST /invoices/{id}/status
func (h *InvoiceHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validation.Struct(req); !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	inv, err := h.Svc.SetStatus(r.Context(), userID, id, models.InvoiceStatus(req.Status))
	switch {
	case errors.Is(err, services.ErrNotFound):
		respondError(w, r, http.StatusNotFound, "not_found", nil)
	case errors.Is(err, services.ErrInvalidTransition):
		respondError(w, r, http.StatusConflict, "invalid_transition", nil)
	case err != nil:
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
	default:
		httpx.JSON(w, http.StatusOK, h.render(*inv, h.Now()))
	}
}
