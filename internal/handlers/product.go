package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/auth"
	"github.com/facturapro/facturapro/internal/httpx"
	"github.com/facturapro/facturapro/internal/models"
	"github.com/facturapro/facturapro/internal/validation"
)

type ProductHandler struct {
	DB *gorm.DB
}

func NewProductHandler(db *gorm.DB) *ProductHandler { return &ProductHandler{DB: db} }

type productRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
	TaxRate     float64 `json:"tax_rate" validate:"gte=0,lte=100"`
	Unit        string  `json:"unit"`
}

func (req *productRequest) apply(p *models.Product) {
	p.Name = strings.TrimSpace(req.Name)
	p.Description = req.Description
	p.UnitPrice = req.UnitPrice
	p.TaxRate = req.TaxRate
	p.Unit = req.Unit
	if p.Unit == "" {
		p.Unit = "unit"
	}
}

// List: GET /products?q=&page=&limit=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	dbq := h.DB.Where("user_id = ?", userID)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := likePattern(q)
		dbq = dbq.Where("lower(name) LIKE ? OR lower(description) LIKE ?", like, like)
	}

	var total int64
	dbq.Model(&models.Product{}).Count(&total)
	var products []models.Product
	if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&products).Error; err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": products, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validation.Struct(req); !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	product := models.Product{UserID: userID}
	req.apply(&product)
	if err := h.DB.Create(&product).Error; err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

// Get: GET /products/{id}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	var product models.Product
	err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Update: PUT /products/{id}
//
// Line items copied from this product keep their historical values; only
// future invoices see the new price or rate.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	var product models.Product
	err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	var req productRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validation.Struct(req); !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	req.apply(&product)
	if err := h.DB.Save(&product).Error; err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

// Delete: DELETE /products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Product{})
	if res.Error != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if res.RowsAffected == 0 {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
