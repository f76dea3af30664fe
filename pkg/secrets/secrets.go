package secrets

import (
	"crypto/rand"
	"encoding/base64"

	dErrors "sitekit/pkg/domain-errors"
)

// Generate creates a cryptographically secure random secret, base64url
// encoded. Used as a signing key when none is configured.
func Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not generate secret")
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
