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

type ClientHandler struct {
	DB *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler { return &ClientHandler{DB: db} }

type clientRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	Country string `json:"country"`
	TaxID   string `json:"tax_id"`
}

func (req *clientRequest) apply(c *models.Client) {
	c.Name = strings.TrimSpace(req.Name)
	c.Email = strings.ToLower(strings.TrimSpace(req.Email))
	c.Phone = req.Phone
	c.Address = req.Address
	c.City = req.City
	c.Country = req.Country
	c.TaxID = req.TaxID
}

// List: GET /clients?q=&page=&limit=
func (h *ClientHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	limit, offset := pagination(r)

	dbq := h.DB.Where("user_id = ?", userID)
	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		like := likePattern(q)
		dbq = dbq.Where("lower(name) LIKE ? OR lower(email) LIKE ?", like, like)
	}

	var total int64
	dbq.Model(&models.Client{}).Count(&total)
	var clients []models.Client
	if err := dbq.Order("name asc").Limit(limit).Offset(offset).Find(&clients).Error; err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": clients, "total": total, "limit": limit, "offset": offset})
}

// Create: POST /clients
func (h *ClientHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req clientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validation.Struct(req); !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	client := models.Client{UserID: userID}
	req.apply(&client)
	if err := h.DB.Create(&client).Error; err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusCreated, client)
}

// Get: GET /clients/{id}
func (h *ClientHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	var client models.Client
	err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Update: PUT /clients/{id}
func (h *ClientHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	var client models.Client
	err := h.DB.Where("id = ? AND user_id = ?", id, userID).First(&client).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	var req clientRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validation.Struct(req); !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	req.apply(&client)
	if err := h.DB.Save(&client).Error; err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, client)
}

// Delete: DELETE /clients/{id}
//
// Invoices referencing the client are left intact; reports resolve the
// dangling reference to an "unknown client" label.
func (h *ClientHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	id, ok := pathID(r)
	if !ok {
		respondError(w, r, http.StatusNotFound, "not_found", nil)
		return
	}

	res := h.DB.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Client{})
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
