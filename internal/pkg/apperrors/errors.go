// Package apperrors defines the sentinel errors shared by repositories, services and the
// HTTP error mapping.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrTokenNotFound      = errors.New("token not found")
	ErrTokenRevoked       = errors.New("token revoked")

	ErrPermissionDenied = errors.New("permission denied")

	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")
)

// Academic record errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrStudentNotFound      = errors.New("student not found")
	ErrSubjectNotFound      = errors.New("subject not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrNotificationNotFound = errors.New("notification not found")
	// ErrMarksLocked is returned when a write targets marks that were already approved.
	ErrMarksLocked = errors.New("marks are locked after approval")
)

// CustomError attaches a client-facing message and optional details to a sentinel.
// errors.Is sees through it to Err.
type CustomError struct {
	Err     error
	Message string
	Details map[string]interface{}
}

func (e *CustomError) Error() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	default:
		return "unknown error"
	}
}

func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError wraps err with message.
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{Err: err, Message: message}
}

// WithDetails adds context the error middleware passes through to the client.
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// NewForbiddenError wraps ErrPermissionDenied.
func NewForbiddenError(message string) error {
	return NewCustomError(ErrPermissionDenied, message)
}

// NewBadRequestError wraps ErrBadRequest.
func NewBadRequestError(message string) error {
	return NewCustomError(ErrBadRequest, message)
}

// NotFoundf wraps a not-found sentinel with a formatted message.
func NotFoundf(sentinel error, format string, args ...interface{}) error {
	return NewCustomError(sentinel, fmt.Sprintf(format, args...))
}
