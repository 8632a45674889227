package server

import (
	"context"
	"log/slog"
	"net/http"

	"gorm.io/gorm"

	"github.com/facturapro/facturapro/internal/auth"
	"github.com/facturapro/facturapro/internal/handlers"
	"github.com/facturapro/facturapro/internal/httpx"
	"github.com/facturapro/facturapro/internal/middleware"
	"github.com/facturapro/facturapro/internal/models"
	"github.com/facturapro/facturapro/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares
// applied.
func New(db *gorm.DB, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// RequireAuth verifies that the session's user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	// --- Health endpoints ---
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// --- Public auth endpoints ---
	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("POST /signup", ah.Signup)
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /logout", ah.Logout)
	mux.Handle("GET /me", requireAuth(http.HandlerFunc(ah.Me)))

	// --- Clients ---
	ch := handlers.NewClientHandler(db)
	mux.Handle("GET /clients", requireAuth(http.HandlerFunc(ch.List)))
	mux.Handle("POST /clients", requireAuth(http.HandlerFunc(ch.Create)))
	mux.Handle("GET /clients/{id}", requireAuth(http.HandlerFunc(ch.Get)))
	mux.Handle("PUT /clients/{id}", requireAuth(http.HandlerFunc(ch.Update)))
	mux.Handle("DELETE /clients/{id}", requireAuth(http.HandlerFunc(ch.Delete)))

	// --- Products ---
	ph := handlers.NewProductHandler(db)
	mux.Handle("GET /products", requireAuth(http.HandlerFunc(ph.List)))
	mux.Handle("POST /products", requireAuth(http.HandlerFunc(ph.Create)))
	mux.Handle("GET /products/{id}", requireAuth(http.HandlerFunc(ph.Get)))
	mux.Handle("PUT /products/{id}", requireAuth(http.HandlerFunc(ph.Update)))
	mux.Handle("DELETE /products/{id}", requireAuth(http.HandlerFunc(ph.Delete)))

	// --- Invoices ---
	invSvc := services.NewInvoiceService(db)
	ih := handlers.NewInvoiceHandler(db, invSvc)
	mux.Handle("GET /invoices", requireAuth(http.HandlerFunc(ih.List)))
	mux.Handle("POST /invoices", requireAuth(http.HandlerFunc(ih.Create)))
	mux.Handle("GET /invoices/{id}", requireAuth(http.HandlerFunc(ih.Get)))
	mux.Handle("PUT /invoices/{id}", requireAuth(http.HandlerFunc(ih.Update)))
	mux.Handle("DELETE /invoices/{id}", requireAuth(http.HandlerFunc(ih.Delete)))
	mux.Handle("POST /invoices/{id}/status", requireAuth(http.HandlerFunc(ih.SetStatus)))

	// --- Settings ---
	sh := handlers.NewSettingsHandler(db)
	mux.Handle("GET /settings/company", requireAuth(http.HandlerFunc(sh.GetCompany)))
	mux.Handle("PUT /settings/company", requireAuth(http.HandlerFunc(sh.PutCompany)))
	mux.Handle("GET /settings/preferences", requireAuth(http.HandlerFunc(sh.GetPreferences)))
	mux.Handle("PUT /settings/preferences", requireAuth(http.HandlerFunc(sh.PutPreferences)))

	// --- Reports ---
	rh := handlers.NewReportHandler(services.NewReportService(db))
	mux.Handle("GET /reports/summary", requireAuth(http.HandlerFunc(rh.Summary)))
	mux.Handle("GET /reports/dashboard", requireAuth(http.HandlerFunc(rh.Dashboard)))

	// --- Exports ---
	eh := handlers.NewExportHandler(services.NewExportService(db))
	mux.Handle("GET /export/invoices.csv", requireAuth(http.HandlerFunc(eh.InvoicesCSV)))
	mux.Handle("GET /export/backup.json", requireAuth(http.HandlerFunc(eh.BackupJSON)))

	var handler http.Handler = mux
	handler = auth.Middleware(handler)
	handler = middleware.Prefs(handler)
	handler = middleware.Recover(logger)(handler)
	handler = middleware.Logging(logger)(handler)
	handler = middleware.RequestID(handler)
	return handler
}

func requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}
