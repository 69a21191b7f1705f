package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Failure taxonomy shared by the authorization core and its HTTP facade.
var (
	// ErrInvalidAccessToken covers malformed, unknown, and expired tokens alike.
	ErrInvalidAccessToken = &AppError{
		Code:       "INVALID_ACCESS_TOKEN",
		Message:    "Invalid or expired access token",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrUnauthorizedAccess is returned when the token is live but the
	// principal lacks the required permission.
	ErrUnauthorizedAccess = &AppError{
		Code:       "UNAUTHORIZED_ACCESS",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrInvalidUserID = &AppError{
		Code:       "INVALID_USER_ID",
		Message:    "Unknown login id",
		StatusCode: http.StatusUnauthorized,
	}

	ErrInvalidPassword = &AppError{
		Code:       "INVALID_PASSWORD",
		Message:    "Invalid password",
		StatusCode: http.StatusUnauthorized,
	}

	// ErrAlreadyLoggedIn enforces the single-active-session-per-login-id rule.
	ErrAlreadyLoggedIn = &AppError{
		Code:       "ALREADY_LOGGED_IN",
		Message:    "An active session already exists for this login id",
		StatusCode: http.StatusConflict,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrAlreadyExists = &AppError{
		Code:       "ALREADY_EXISTS",
		Message:    "Resource already exists",
		StatusCode: http.StatusConflict,
	}

	// ErrStillReferenced blocks deletion of catalog entities that are still
	// referenced by roles, users, or services.
	ErrStillReferenced = &AppError{
		Code:       "STILL_REFERENCED",
		Message:    "Resource is still referenced and cannot be removed",
		StatusCode: http.StatusConflict,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// NewNotFound returns a NOT_FOUND error describing the missing entity.
func NewNotFound(message string) *AppError {
	return &AppError{
		Code:       ErrNotFound.Code,
		Message:    message,
		StatusCode: ErrNotFound.StatusCode,
	}
}

// NewAlreadyExists returns an ALREADY_EXISTS error describing the conflict.
func NewAlreadyExists(message string) *AppError {
	return &AppError{
		Code:       ErrAlreadyExists.Code,
		Message:    message,
		StatusCode: ErrAlreadyExists.StatusCode,
	}
}

// Is reports whether err carries the same application error code as target.
// Distinct instances produced by the New* helpers compare equal when their
// codes match, so callers can test against the sentinel values above.
func Is(err error, target *AppError) bool {
	if err == nil || target == nil {
		return false
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	return appErr.Code == target.Code
}
