package handler

import (
	"strings"

	"sitekit/internal/consent/models"
	dErrors "sitekit/pkg/domain-errors"
	"sitekit/pkg/validation"
)

// DraftRequest toggles one category in the visitor's draft.
type DraftRequest struct {
	Category string `json:"category"`
	Value    *bool  `json:"value"`
}

func (r *DraftRequest) Normalize() {
	if r == nil {
		return
	}
	r.Category = strings.ToLower(strings.TrimSpace(r.Category))
}

func (r *DraftRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if r.Category == "" {
		return dErrors.New(dErrors.CodeValidation, "category is required")
	}
	if err := validation.CheckStringLength("category", r.Category, validation.MaxCategoryLength); err != nil {
		return err
	}
	if r.Value == nil {
		return dErrors.New(dErrors.CodeValidation, "value is required")
	}
	_, err := models.ParseCategory(r.Category)
	return err
}

// ToCategory converts a validated request category.
func (r *DraftRequest) ToCategory() models.Category {
	return models.Category(r.Category)
}
