package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned when the login or password is wrong.
	// The message is deliberately generic: unknown user and wrong password
	// are indistinguishable to prevent account enumeration.
	ErrInvalidCredentials = errors.New("invalid username/email or password")
	// ErrEmailNotConfirmed is returned when credentials match but the
	// account email has not been confirmed yet.
	ErrEmailNotConfirmed = errors.New("email not confirmed, check your inbox")
	// ErrTokenInvalid is the single user-visible message for malformed,
	// tampered and expired confirmation tokens.
	ErrTokenInvalid = errors.New("confirmation link is invalid or has expired")
	// ErrForbidden is returned when an authenticated principal lacks the
	// required role.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound covers both a genuinely missing resource and one owned by
	// somebody else, so the existence of other users' notes never leaks.
	ErrNotFound = errors.New("not found")
	// ErrUserAlreadyExists is returned when registering a taken username or
	// email.
	ErrUserAlreadyExists = errors.New("username or email already registered")
	// ErrEmptyTitle is returned when a note title is empty after
	// sanitization.
	ErrEmptyTitle = errors.New("title is required")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Every taxonomy case is
// non-fatal; anything unrecognized becomes a 500 without crashing the
// process.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		return NewHTTPError(http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	case errors.Is(err, ErrEmailNotConfirmed):
		return NewHTTPError(http.StatusForbidden, err.Error(), "EMAIL_NOT_CONFIRMED")
	case errors.Is(err, ErrTokenInvalid):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "TOKEN_INVALID")
	case errors.Is(err, ErrForbidden):
		return NewHTTPError(http.StatusForbidden, err.Error(), "FORBIDDEN")
	case errors.Is(err, ErrNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "NOT_FOUND")
	case errors.Is(err, ErrUserAlreadyExists):
		return NewHTTPError(http.StatusConflict, err.Error(), "USER_ALREADY_EXISTS")
	case errors.Is(err, ErrEmptyTitle):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMPTY_TITLE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
