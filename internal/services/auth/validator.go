package auth

import (
	"regexp"
	"unicode"

	"github.com/go-playground/validator/v10"

	"forest-tails/server/internal/apperr"
	"forest-tails/server/internal/protocol"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)

// authValidator checks request shape before any storage is touched. Field
// rules mirror the client-side ones; each failure carries the format code
// clients key their messages on.
type authValidator struct {
	validate *validator.Validate
}

func newAuthValidator() *authValidator {
	v := validator.New()
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("gamepassword", func(fl validator.FieldLevel) bool {
		return passwordOK(fl.Field().String())
	})
	return &authValidator{validate: v}
}

// passwordOK requires at least 8 characters with an upper, a lower and a
// digit.
func passwordOK(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

func (v *authValidator) ValidateLogin(req LoginRequest) error {
	if req.Username == "" {
		return apperr.Validation("Username required")
	}
	if req.Password == "" {
		return apperr.Validation("Password required")
	}
	return nil
}

func (v *authValidator) ValidateRegister(req RegisterRequest) error {
	if err := v.validate.Var(req.Username, "required,username"); err != nil {
		return apperr.New(protocol.CodeInvalidUsernameFormat, "Invalid username format")
	}
	if err := v.validate.Var(req.Email, "required,email"); err != nil {
		return apperr.New(protocol.CodeInvalidEmailFormat, "Invalid email format")
	}
	if err := v.validate.Var(req.Password, "required,gamepassword"); err != nil {
		return apperr.New(protocol.CodeInvalidPasswordFormat, "Invalid password format")
	}
	if err := v.validate.Var(req.FullName, "required"); err != nil {
		return apperr.New(protocol.CodeMissingRequiredField, "Full name required")
	}
	return nil
}

func (v *authValidator) ValidateVerify(req VerifyRequest) error {
	if err := v.validate.Var(req.Email, "required,email"); err != nil {
		return apperr.New(protocol.CodeInvalidEmailFormat, "Invalid email format")
	}
	if req.Code == "" {
		return apperr.New(protocol.CodeMissingRequiredField, "Verification code required")
	}
	return nil
}
