package auth

import (
	"chat-client/errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

type LoginRequest struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

type SignupRequest struct {
	Username        string `validate:"required"`
	Email           string `validate:"required"`
	Password        string `validate:"required"`
	ConfirmPassword string
}

// ValidateLogin rejects empty fields before any mutation is attempted.
func ValidateLogin(req LoginRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	if err := validate.Struct(req); err != nil {
		return errors.ErrEmptyFields
	}
	return nil
}

// ValidateSignup checks, in order: empty fields, confirmation mismatch, password length.
func ValidateSignup(req SignupRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validate.Struct(req); err != nil {
		return errors.ErrEmptyFields
	}
	if req.Password != req.ConfirmPassword {
		return errors.ErrPasswordMismatch
	}
	if err := validate.Var(req.Password, "min=6"); err != nil {
		return errors.ErrPasswordTooShort
	}
	return nil
}
