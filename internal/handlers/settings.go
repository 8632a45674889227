package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/facturapro/facturapro/internal/auth"
	"github.com/facturapro/facturapro/internal/httpx"
	"github.com/facturapro/facturapro/internal/models"
	"github.com/facturapro/facturapro/internal/validation"
)

type SettingsHandler struct {
	DB *gorm.DB
}

func NewSettingsHandler(db *gorm.DB) *SettingsHandler { return &SettingsHandler{DB: db} }

// GetCompany: GET /settings/company — always returns a row, defaulted if the
// user never saved one.
func (h *SettingsHandler) GetCompany(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	settings := models.CompanySettings{UserID: userID, InvoicePrefix: "FAC", DefaultTaxRate: 21, DefaultCurrency: "EUR", PaymentTermDays: 30}
	err := h.DB.Where("user_id = ?", userID).First(&settings).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

type companyRequest struct {
	Name            string  `json:"name" validate:"required"`
	TaxID           string  `json:"tax_id"`
	Address         string  `json:"address"`
	Phone           string  `json:"phone"`
	Email           string  `json:"email" validate:"omitempty,email"`
	Website         string  `json:"website"`
	InvoicePrefix   string  `json:"invoice_prefix"`
	DefaultTaxRate  float64 `json:"default_tax_rate" validate:"gte=0,lte=100"`
	DefaultCurrency string  `json:"default_currency"`
	PaymentTermDays int     `json:"payment_term_days" validate:"gte=0"`
}

// PutCompany: PUT /settings/company — upsert on the per-user unique index.
func (h *SettingsHandler) PutCompany(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req companyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validation.Struct(req); !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	settings := models.CompanySettings{
		UserID:          userID,
		Name:            strings.TrimSpace(req.Name),
		TaxID:           req.TaxID,
		Address:         req.Address,
		Phone:           req.Phone,
		Email:           strings.ToLower(strings.TrimSpace(req.Email)),
		Website:         req.Website,
		InvoicePrefix:   strings.TrimSpace(req.InvoicePrefix),
		DefaultTaxRate:  req.DefaultTaxRate,
		DefaultCurrency: strings.ToUpper(strings.TrimSpace(req.DefaultCurrency)),
	}
	settings.PaymentTermDays = req.PaymentTermDays
	if settings.InvoicePrefix == "" {
		settings.InvoicePrefix = "FAC"
	}
	if settings.DefaultCurrency == "" {
		settings.DefaultCurrency = "EUR"
	}

	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "tax_id", "address", "phone", "email", "website",
			"invoice_prefix", "default_tax_rate", "default_currency", "payment_term_days", "updated_at",
		}),
	}).Create(&settings).Error
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, settings)
}

// GetPreferences: GET /settings/preferences
func (h *SettingsHandler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	prefs := models.UserPreferences{UserID: userID, Language: "es", Theme: "system", EmailNotifications: true, OverdueReminders: true}
	err := h.DB.Where("user_id = ?", userID).First(&prefs).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, prefs)
}

type preferencesRequest struct {
	Language           string `json:"language" validate:"required,oneof=es en"`
	Theme              string `json:"theme" validate:"required,oneof=light dark system"`
	EmailNotifications bool   `json:"email_notifications"`
	OverdueReminders   bool   `json:"overdue_reminders"`
}

// PutPreferences: PUT /settings/preferences
func (h *SettingsHandler) PutPreferences(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req preferencesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	if v := validation.Struct(req); !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	prefs := models.UserPreferences{
		UserID:             userID,
		Language:           req.Language,
		Theme:              req.Theme,
		EmailNotifications: req.EmailNotifications,
		OverdueReminders:   req.OverdueReminders,
	}
	err := h.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"language", "theme", "email_notifications", "overdue_reminders", "updated_at",
		}),
	}).Create(&prefs).Error
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, prefs)
}
