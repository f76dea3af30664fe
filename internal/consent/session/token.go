package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	dErrors "sitekit/pkg/domain-errors"
)

// VisitorClaims are the claims of the visitor cookie.
type VisitorClaims struct {
	jwt.RegisteredClaims
}

// TokenService signs and verifies visitor tokens. The token only carries an
// anonymous visitor id; consent itself lives in storage.
type TokenService struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	now        func() time.Time
}

func NewTokenService(signingKey, issuer string, ttl time.Duration) *TokenService {
	return &TokenService{
		signingKey: []byte(signingKey),
		issuer:     issuer,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Issue signs a token for visitorID and returns it with its expiry.
func (s *TokenService) Issue(visitorID string) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, VisitorClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   visitorID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign visitor token: %w", err)
	}
	return signed, expires, nil
}

// Parse verifies a token and returns its visitor id.
func (s *TokenService) Parse(raw string) (string, error) {
	claims := &VisitorClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid visitor token")
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid visitor id")
	}
	return claims.Subject, nil
}
