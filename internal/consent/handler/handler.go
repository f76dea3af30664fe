package handler

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitekit/internal/consent/banner"
	"sitekit/internal/consent/session"
	"sitekit/pkg/platform/httputil"
	"sitekit/pkg/requestcontext"
)

// Sessions hands out the calling visitor's consent session.
type Sessions interface {
	Acquire(ctx context.Context, visitorID string, bot bool) *session.Session
}

// Handler serves the consent API for the current visitor.
type Handler struct {
	sessions  Sessions
	logger    *slog.Logger
	policyURL string
}

// New creates a consent Handler. policyURL is linked from the settings dialog.
func New(sessions Sessions, logger *slog.Logger, policyURL string) *Handler {
	return &Handler{sessions: sessions, logger: logger, policyURL: policyURL}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/consent", func(r chi.Router) {
		r.Get("/", h.handleGetConsent)
		r.Patch("/draft", h.handleUpdateDraft)
		r.Post("/save", h.handleSave)
		r.Post("/accept-all", h.handleAcceptAll)
		r.Post("/deny", h.handleDeny)
		r.Post("/settings/open", h.handleOpenSettings)
		r.Post("/settings/close", h.handleCloseSettings)
		r.Get("/banner", h.handleBanner)
		r.Post("/banner/actions/{action}", h.handleBannerAction)
		r.Get("/dialog", h.handleDialog)
		r.Post("/dialog/actions/{action}", h.handleDialogAction)
		r.Get("/scripts", h.handleScripts)
		r.Get("/scripts.html", h.handleScriptsHTML)
	})
}

func (h *Handler) session(r *http.Request) *session.Session {
	ctx := r.Context()
	return h.sessions.Acquire(ctx, requestcontext.VisitorID(ctx), requestcontext.IsBot(ctx))
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, sess *session.Session) {
	httputil.WriteJSON(w, http.StatusOK, toConsentResponse(sess.Service.Snapshot(), sess.Ephemeral))
}

func (h *Handler) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	h.writeSnapshot(w, h.session(r))
}

func (h *Handler) handleUpdateDraft(w http.ResponseWriter, r *http.Request) {
	req, ok := httputil.DecodeAndPrepare[DraftRequest](w, r, h.logger)
	if !ok {
		return
	}
	sess := h.session(r)
	sess.Service.UpdateDraft(req.ToCategory(), *req.Value)
	h.writeSnapshot(w, sess)
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	banner.NewDialog(sess.Service, h.policyURL).Save(r.Context())
	h.writeSnapshot(w, sess)
}

func (h *Handler) handleAcceptAll(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	banner.NewDialog(sess.Service, h.policyURL).AcceptAll(r.Context())
	h.writeSnapshot(w, sess)
}

func (h *Handler) handleDeny(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	banner.NewDialog(sess.Service, h.policyURL).Deny(r.Context())
	h.writeSnapshot(w, sess)
}

func (h *Handler) handleOpenSettings(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	banner.New(sess.Service).OpenSettings()
	h.writeSnapshot(w, sess)
}

func (h *Handler) handleCloseSettings(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	banner.NewDialog(sess.Service, h.policyURL).Close()
	h.writeSnapshot(w, sess)
}

func (h *Handler) handleBanner(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, banner.New(h.session(r).Service).View())
}

func (h *Handler) handleDialog(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, banner.NewDialog(h.session(r).Service, h.policyURL).View())
}

// handleBannerAction presses a banner button by the id its View advertised.
func (h *Handler) handleBannerAction(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	action := banner.ActionID(chi.URLParam(r, "action"))
	if err := banner.New(sess.Service).Perform(r.Context(), action); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeSnapshot(w, sess)
}

func (h *Handler) handleDialogAction(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	action := banner.ActionID(chi.URLParam(r, "action"))
	if _, err := banner.NewDialog(sess.Service, h.policyURL).Perform(r.Context(), action); err != nil {
		httputil.WriteError(w, err)
		return
	}
	h.writeSnapshot(w, sess)
}

func (h *Handler) handleScripts(w http.ResponseWriter, r *http.Request) {
	sess := h.session(r)
	httputil.WriteJSON(w, http.StatusOK, ScriptsResponse{
		Mount:    emptyIfNil(sess.Gate.Evaluate()),
		Loaded:   emptyIfNil(sess.Gate.Loaded()),
		Eligible: emptyIfNil(sess.Gate.Eligible()),
	})
}

func (h *Handler) handleScriptsHTML(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var buf bytes.Buffer
	if err := h.session(r).Gate.Render(&buf); err != nil {
		h.logger.ErrorContext(ctx, "failed to render consent scripts",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		// Script failures must not break the page: serve an empty fragment.
		buf.Reset()
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "private, no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
