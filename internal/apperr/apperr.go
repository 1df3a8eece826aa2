// Package apperr defines the expected, business-meaningful failure kind.
// A *Error carries a stable protocol code and a client-safe message and is
// returned (never panicked) up the call chain into the executor.
package apperr

import (
	"errors"

	"forest-tails/server/internal/protocol"
)

type Error struct {
	Code    protocol.Code
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New builds a domain error with an explicit code.
func New(code protocol.Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Validation(message string) *Error {
	return New(protocol.CodeValidationError, message)
}

func NotFound(message string, code protocol.Code) *Error {
	return New(code, message)
}

func Conflict(message string, code protocol.Code) *Error {
	return New(code, message)
}

func Auth(message string, code protocol.Code) *Error {
	return New(code, message)
}

// As extracts a domain error from an error chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
