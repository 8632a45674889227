package handlers

import (
	"net/http"
	"time"

	"github.com/facturapro/facturapro/internal/auth"
	"github.com/facturapro/facturapro/internal/httpx"
	"github.com/facturapro/facturapro/internal/services"
)

type ReportHandler struct {
	Svc *services.ReportService
	Now func() time.Time
}

func NewReportHandler(svc *services.ReportService) *ReportHandler {
	return &ReportHandler{Svc: svc, Now: time.Now}
}

// Summary: GET /reports/summary?period=last-30-days|last-3-months|last-6-months|last-12-months|this-year
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	period, err := services.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid_period", nil)
		return
	}

	summary, err := h.Svc.Summarize(r.Context(), userID, period, h.Now())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, summary)
}

// Dashboard: GET /reports/dashboard
func (h *ReportHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	dashboard, err := h.Svc.BuildDashboard(r.Context(), userID, h.Now())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}
