package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/facturapro/facturapro/internal/auth"
	"github.com/facturapro/facturapro/internal/httpx"
	"github.com/facturapro/facturapro/internal/services"
)

type ExportHandler struct {
	Svc *services.ExportService
	Now func() time.Time
}

func NewExportHandler(svc *services.ExportService) *ExportHandler {
	return &ExportHandler{Svc: svc, Now: time.Now}
}

// InvoicesCSV: GET /export/invoices.csv
func (h *ExportHandler) InvoicesCSV(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	now := h.Now()

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoices-"+now.Format("2006-01-02")+".csv"))
	if err := h.Svc.WriteInvoicesCSV(r.Context(), w, userID, now); err != nil {
		// Headers may already be out; log-and-abort is the best we can do.
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
	}
}

// BackupJSON: GET /export/backup.json
func (h *ExportHandler) BackupJSON(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	now := h.Now()

	backup, err := h.Svc.BuildBackup(r.Context(), userID, now)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "facturapro-backup-"+now.Format("2006-01-02")+".json"))
	httpx.JSON(w, http.StatusOK, backup)
}
