package legal

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitekit/internal/consent/models"
	"sitekit/pkg/platform/httputil"
)

// Handler exposes the legal document.
type Handler struct {
	provider *Provider
}

func NewHandler(provider *Provider) *Handler {
	return &Handler{provider: provider}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/api/legal", h.handleDocument)
	r.Get("/api/legal/cookies", h.handleCookies)
}

func (h *Handler) handleDocument(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.provider.Document())
}

// CookiesResponse is the cookie table, optionally filtered.
type CookiesResponse struct {
	Cookies []Cookie `json:"cookies"`
}

func (h *Handler) handleCookies(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		if raw == "essential" {
			raw = string(models.CategoryNecessary)
		}
		c, err := models.ParseCategory(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		category = c
	}
	httputil.WriteJSON(w, http.StatusOK, CookiesResponse{Cookies: h.provider.Document().CookiesIn(category)})
}
