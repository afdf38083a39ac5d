package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport layers.
type ErrorCode string

const (
	ErrCodeNotFound          ErrorCode = "NOT_FOUND"
	ErrCodeInvalid           ErrorCode = "INVALID"
	ErrCodeConflict          ErrorCode = "CONFLICT"
	ErrCodeDuplicate         ErrorCode = "DUPLICATE_KEY"
	ErrCodeIllegalTransition ErrorCode = "ILLEGAL_TRANSITION"
	ErrCodeUnauthorized      ErrorCode = "UNAUTHORIZED"
	ErrCodeInternal          ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrRecordNotFound = NewError(ErrCodeNotFound, "record not found")
	ErrOrderNotFound  = NewError(ErrCodeNotFound, "order not found")
	ErrDuplicateKey   = NewError(ErrCodeDuplicate, "record already exists")
	ErrInvalidPayload = NewError(ErrCodeInvalid, "invalid payload")
	ErrUnauthorized   = NewError(ErrCodeUnauthorized, "unauthorized")

	// ErrVersionMismatch is the store-level compare-and-swap failure.
	// The arbiter wraps it into a ConflictError carrying the full report.
	ErrVersionMismatch = NewError(ErrCodeConflict, "record version mismatch")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	var cErr *ConflictError
	if errors.As(err, &cErr) {
		return code == ErrCodeConflict
	}
	var tErr *TransitionError
	if errors.As(err, &tErr) {
		return code == ErrCodeIllegalTransition
	}
	return false
}
