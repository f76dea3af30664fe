// Package forms serves the site's form endpoints. They validate input and
// acknowledge it; nothing is persisted or sent.
package forms

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitekit/pkg/platform/httputil"
	"sitekit/pkg/requestcontext"
)

// Response is the envelope every form endpoint replies with. Exactly one of
// the fields is set.
type Response struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	return &Handler{logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/api/login", handle[LoginRequest](h, "login",
		"Login request received. This is a stub response."))
	r.Post("/api/sign-up", handle[SignUpRequest](h, "sign-up",
		"Sign-up request received. This is a stub response."))
	r.Post("/api/contact-form", handle[ContactRequest](h, "contact-form",
		"Message received. We will get back to you soon."))
	r.Post("/api/newsletter", handle[NewsletterRequest](h, "newsletter",
		"Subscription request received."))
}

func handle[T any](h *Handler, form, ack string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req T
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.logger.ErrorContext(ctx, "form: decode failed",
				"form", form,
				"error", err,
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteJSON(w, http.StatusInternalServerError,
				Response{Error: "Unable to process the " + form + " request."})
			return
		}
		if err := httputil.PrepareRequest(&req); err != nil {
			h.logger.InfoContext(ctx, "form: rejected",
				"form", form,
				"reason", err.Error(),
				"request_id", requestcontext.RequestID(ctx),
			)
			httputil.WriteJSON(w, http.StatusBadRequest, Response{Error: err.Error()})
			return
		}
		h.logger.InfoContext(ctx, "form: accepted",
			"form", form,
			"request_id", requestcontext.RequestID(ctx),
		)
		httputil.WriteJSON(w, http.StatusOK, Response{Message: ack})
	}
}
