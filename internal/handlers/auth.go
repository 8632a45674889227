package handlers

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/auth"
	"github.com/facturapro/facturapro/internal/httpx"
	"github.com/facturapro/facturapro/internal/models"
	"github.com/facturapro/facturapro/internal/validation"
)

type AuthHandler struct {
	DB *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler { return &AuthHandler{DB: db} }

type signupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if v := validation.Struct(req); !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if count > 0 {
		respondError(w, r, http.StatusConflict, "email_taken", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	user := models.User{Email: req.Email, Name: strings.TrimSpace(req.Name), Password: string(hash)}
	if err := h.DB.Create(&user).Error; err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	// Each tenant starts with default settings and preferences rows.
	h.DB.Create(&models.CompanySettings{UserID: user.ID, InvoicePrefix: "FAC", DefaultTaxRate: 21, DefaultCurrency: "EUR", PaymentTermDays: 30})
	h.DB.Create(&models.UserPreferences{UserID: user.ID, Language: "es", Theme: "system", EmailNotifications: true, OverdueReminders: true})

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusCreated, user)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_json", nil)
		return
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if v := validation.Struct(req); !v.Empty() {
		respondError(w, r, http.StatusUnprocessableEntity, "validation_failed", v)
		return
	}

	var user models.User
	err := h.DB.Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(w, r, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		respondError(w, r, http.StatusUnauthorized, "invalid_credentials", nil)
		return
	}

	auth.CreateSession(w, user.ID)
	httpx.JSON(w, http.StatusOK, user)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, _ *http.Request) {
	auth.ClearSession(w)
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	var user models.User
	if err := h.DB.First(&user, userID).Error; err != nil {
		respondError(w, r, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}
