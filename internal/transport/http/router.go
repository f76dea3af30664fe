// Package httptransport assembles the public HTTP surface.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	consentHandler "sitekit/internal/consent/handler"
	"sitekit/internal/consent/session"
	"sitekit/internal/forms"
	"sitekit/internal/legal"
	"sitekit/internal/platform/health"
	"sitekit/pkg/platform/middleware/metadata"
	"sitekit/pkg/platform/middleware/request"
	"sitekit/pkg/validation"
)

// Deps collects what the router mounts. Legal and Forms are optional.
type Deps struct {
	Logger   *slog.Logger
	Consent  *consentHandler.Handler
	Legal    *legal.Handler
	Forms    *forms.Handler
	Health   *health.Handler
	Tokens   *session.TokenService
	Cookie   session.CookieConfig
	Metadata *metadata.Config
	Timeout  time.Duration
	Metrics  *request.Metrics
	Gatherer prometheus.Gatherer
}

// NewRouter wires all public endpoints with middleware.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(request.Recovery(d.Logger))
	r.Use(request.RequestID)
	r.Use(metadata.NewMiddleware(d.Metadata).Handler)
	r.Use(request.Logger(d.Logger))
	r.Use(request.Latency(d.Metrics, routePattern))

	// Probes and scraping stay outside the timeout and visitor cookie.
	if d.Health != nil {
		d.Health.Register(r)
	}
	if d.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		if d.Timeout > 0 {
			r.Use(request.Timeout(d.Timeout))
		}
		r.Use(request.ContentTypeJSON)
		r.Use(request.BodyLimit(validation.MaxBodySize))

		r.Group(func(r chi.Router) {
			r.Use(session.Middleware(d.Tokens, d.Cookie, d.Logger))
			d.Consent.Register(r)
		})
		if d.Legal != nil {
			d.Legal.Register(r)
		}
		if d.Forms != nil {
			d.Forms.Register(r)
		}
	})

	return r
}

// routePattern labels latency by chi route so ids in paths cannot blow up
// metric cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		return rctx.RoutePattern()
	}
	return ""
}
