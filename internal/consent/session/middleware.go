package session

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"sitekit/pkg/requestcontext"
)

// CookieName is the visitor cookie.
const CookieName = "sitekit_visitor"

// CookieConfig controls the visitor cookie attributes.
type CookieConfig struct {
	Secure bool
	Domain string
}

// Middleware resolves the visitor id from the signed cookie, minting a new
// one when the cookie is missing, expired or tampered with. Crawlers and
// speculative prefetches get no id and therefore no stored consent.
func Middleware(tokens *TokenService, cookie CookieConfig, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if requestcontext.IsBot(ctx) || isPrefetch(r) {
				next.ServeHTTP(w, r)
				return
			}

			if c, err := r.Cookie(CookieName); err == nil {
				visitorID, err := tokens.Parse(c.Value)
				if err == nil {
					next.ServeHTTP(w, r.WithContext(requestcontext.WithVisitorID(ctx, visitorID)))
					return
				}
				logger.DebugContext(ctx, "visitor token rejected, issuing a new one",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
			}

			visitorID := uuid.NewString()
			raw, expires, err := tokens.Issue(visitorID)
			if err != nil {
				logger.ErrorContext(ctx, "failed to issue visitor token",
					"request_id", requestcontext.RequestID(ctx),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    raw,
				Path:     "/",
				Domain:   cookie.Domain,
				Expires:  expires,
				MaxAge:   int(time.Until(expires).Seconds()),
				HttpOnly: true,
				Secure:   cookie.Secure,
				SameSite: http.SameSiteLaxMode,
			})
			next.ServeHTTP(w, r.WithContext(requestcontext.WithVisitorID(ctx, visitorID)))
		})
	}
}

func isPrefetch(r *http.Request) bool {
	for _, h := range []string{"Sec-Purpose", "Purpose"} {
		if strings.Contains(strings.ToLower(r.Header.Get(h)), "prefetch") {
			return true
		}
	}
	return false
}
