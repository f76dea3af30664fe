package validation

import (
	"fmt"

	dErrors "sitekit/pkg/domain-errors"
)

const (
	// MaxBodySize caps JSON request bodies (64 KB).
	MaxBodySize = 64 * 1024

	// MaxCategoryLength bounds consent category names echoed back in errors.
	MaxCategoryLength = 32

	// MaxEmailLength is the maximum length of an email address.
	MaxEmailLength = 255
)

// CheckStringLength validates that a string does not exceed the maximum length.
func CheckStringLength(fieldName, value string, max int) error {
	if len(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}
