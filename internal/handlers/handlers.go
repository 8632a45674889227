package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/facturapro/facturapro/internal/httpx"
	"github.com/facturapro/facturapro/internal/i18n"
	"github.com/facturapro/facturapro/internal/middleware"
)

// respondError writes the uniform error envelope with the message translated
// into the caller's preferred language.
func respondError(w http.ResponseWriter, r *http.Request, status int, code string, details any) {
	httpx.JSONErrorMessage(w, status, code, i18n.T(middleware.LangFrom(r), code), details)
}

// pathID parses the {id} path segment.
func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// pagination reads page/limit query params, capping limit at 200.
func pagination(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return
}

// likePattern builds a safe case-insensitive LIKE pattern from a free-text
// query, stripping anything outside a conservative character set.
func likePattern(q string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(q) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ', r == '-', r == '_', r == '@', r == '.':
			b.WriteRune(r)
		}
	}
	return "%" + b.String() + "%"
}
