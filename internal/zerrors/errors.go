package zerrors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the caller. None of the kinds are retryable.
type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindNotFound     Kind = "not_found"
	KindConflict     Kind = "conflict"
	KindInternal     Kind = "internal"
)

// Error is the structured error returned by directory operations
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewValidationError creates an error for missing or malformed input
func NewValidationError(message string, cause error) *Error {
	return &Error{
		Kind:    KindInvalidInput,
		Message: message,
		Cause:   cause,
	}
}

// NewNotFoundError creates an error for a referenced entity that does not exist
func NewNotFoundError(message string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: message,
	}
}

// NewConflictError creates an error for uniqueness or integrity violations
func NewConflictError(message string, cause error) *Error {
	return &Error{
		Kind:    KindConflict,
		Message: message,
		Cause:   cause,
	}
}

// NewInternalError wraps an unexpected storage or hashing failure
func NewInternalError(message string, cause error) *Error {
	return &Error{
		Kind:    KindInternal,
		Message: message,
		Cause:   cause,
	}
}

// KindOf returns the kind of the first *Error in the chain, or KindInternal.
func KindOf(err error) Kind {
	var zerr *Error
	if errors.As(err, &zerr) {
		return zerr.Kind
	}
	return KindInternal
}

// MessageOf returns the caller-facing message of the first *Error in the chain.
func MessageOf(err error) string {
	var zerr *Error
	if errors.As(err, &zerr) {
		return zerr.Message
	}
	return err.Error()
}

func IsInvalidInput(err error) bool {
	return err != nil && KindOf(err) == KindInvalidInput
}

func IsNotFound(err error) bool {
	return err != nil && KindOf(err) == KindNotFound
}

func IsConflict(err error) bool {
	return err != nil && KindOf(err) == KindConflict
}
