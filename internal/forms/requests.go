package forms

import (
	s "sitekit/pkg/string"
	"sitekit/pkg/validation"
)

type LoginRequest struct {
	Email      string `json:"email" validate:"required,email,max=255"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

func (r *LoginRequest) Normalize() { s.TrimStrings(&r.Email) }

func (r *LoginRequest) Validate() error { return validation.Validate(r) }

type SignUpRequest struct {
	FirstName       string `json:"firstName" validate:"required,notblank"`
	LastName        string `json:"lastName" validate:"required,notblank"`
	Email           string `json:"email" validate:"required,email,max=255"`
	Password        string `json:"password" validate:"required"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	TermsAccepted   bool   `json:"termsAccepted" validate:"accepted"`
}

func (r *SignUpRequest) Normalize() { s.TrimStrings(&r.FirstName, &r.LastName, &r.Email) }

func (r *SignUpRequest) Validate() error { return validation.Validate(r) }

type ContactRequest struct {
	Name           string `json:"name" validate:"min=2,max=50"`
	Surname        string `json:"surname" validate:"min=2,max=50"`
	Email          string `json:"email" validate:"required,email,max=255"`
	Phone          string `json:"phone" validate:"min=9,phone"`
	Message        string `json:"message" validate:"min=10,max=1000"`
	GDPRConsent    bool   `json:"gdprConsent" validate:"accepted"`
	TurnstileToken string `json:"turnstileToken" validate:"required"`
}

func (r *ContactRequest) Normalize() {
	s.TrimStrings(&r.Name, &r.Surname, &r.Email, &r.Phone, &r.Message)
}

func (r *ContactRequest) Validate() error { return validation.Validate(r) }

type NewsletterRequest struct {
	Email          string `json:"email" validate:"required,email,max=255"`
	TurnstileToken string `json:"turnstileToken" validate:"required"`
}

func (r *NewsletterRequest) Normalize() { s.TrimStrings(&r.Email) }

func (r *NewsletterRequest) Validate() error { return validation.Validate(r) }
