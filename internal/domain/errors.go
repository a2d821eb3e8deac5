// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package domain

import "errors"

// ErrorType represents the semantic category of an error
type ErrorType int

const (
	ErrorTypeValidation  ErrorType = iota // Input validation errors (400 Bad Request)
	ErrorTypeNotFound                     // Resource not found errors (404 Not Found)
	ErrorTypeConflict                     // Resource conflict errors (409 Conflict)
	ErrorTypeInternal                     // Internal server errors (500 Internal Server Error)
	ErrorTypeUnavailable                  // Service unavailable errors (503 Service Unavailable)
)

// String returns the wire name of the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrorTypeValidation:
		return "validation"
	case ErrorTypeNotFound:
		return "not_found"
	case ErrorTypeConflict:
		return "conflict"
	case ErrorTypeUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Sentinel errors. They are usually wrapped in a DomainError so callers can
// match both the category and the specific cause.
var (
	ErrInvalidDuration        = errors.New("duration must be a positive multiple of 5 minutes")
	ErrValidationFailed       = errors.New("validation failed")
	ErrMeetingRequestNotFound = errors.New("meeting request not found")
	ErrMeetingNotFound        = errors.New("meeting not found")
	ErrAttendeeNotFound       = errors.New("attendee not found")
	ErrRoomNotFound           = errors.New("room not found")
	ErrProviderUnavailable    = errors.New("calendar provider unavailable")
	ErrProviderTimeout        = errors.New("calendar provider timeout")
	ErrProviderNotFound       = errors.New("calendar identity not found")
	ErrInvalidTransition      = errors.New("invalid meeting request transition")
	ErrRevisionMismatch       = errors.New("revision mismatch")
	ErrUnmarshal              = errors.New("unmarshal error")
	ErrInvalidToken           = errors.New("invalid consent token")
	ErrServiceUnavailable     = errors.New("service unavailable")
	ErrInternal               = errors.New("internal error")
)

// DomainError represents an error with semantic type information
type DomainError struct {
	Type    ErrorType
	Message string
	Err     error // underlying error for wrapping
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// GetErrorType returns the semantic type of an error
func GetErrorType(err error) ErrorType {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Type
	}
	switch {
	case errors.Is(err, ErrInvalidDuration), errors.Is(err, ErrValidationFailed), errors.Is(err, ErrInvalidToken):
		return ErrorTypeValidation
	case errors.Is(err, ErrMeetingRequestNotFound), errors.Is(err, ErrMeetingNotFound),
		errors.Is(err, ErrAttendeeNotFound), errors.Is(err, ErrRoomNotFound), errors.Is(err, ErrProviderNotFound):
		return ErrorTypeNotFound
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrRevisionMismatch):
		return ErrorTypeConflict
	case errors.Is(err, ErrProviderUnavailable), errors.Is(err, ErrProviderTimeout), errors.Is(err, ErrServiceUnavailable):
		return ErrorTypeUnavailable
	}
	return ErrorTypeInternal // default fallback
}

// Error constructors for different types
func NewValidationError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeValidation, Message: message, Err: errors.Join(err...)}
}

func NewNotFoundError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeNotFound, Message: message, Err: errors.Join(err...)}
}

func NewConflictError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeConflict, Message: message, Err: errors.Join(err...)}
}

func NewInternalError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeInternal, Message: message, Err: errors.Join(err...)}
}

func NewUnavailableError(message string, err ...error) *DomainError {
	return &DomainError{Type: ErrorTypeUnavailable, Message: message, Err: errors.Join(err...)}
}
