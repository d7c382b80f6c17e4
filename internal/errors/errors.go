package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrInvalidCredentials is returned for every credential failure: unknown
	// email, wrong PIN, and duplicate registration all share it so the API
	// never discloses whether an email is registered.
	ErrInvalidCredentials = errors.New("invalid email or PIN")
	// ErrPublicationNotFound is returned when a publication id is unknown.
	ErrPublicationNotFound = errors.New("publication not found")
	// ErrCommentNotFound is returned when a comment id is unknown.
	ErrCommentNotFound = errors.New("comment not found")
	// ErrNotOwner is returned when a mutation is attempted by an identity
	// that does not own the resource.
	ErrNotOwner = errors.New("not allowed")
	// ErrAdminRequired is returned when an admin-only operation is attempted
	// by a non-admin identity.
	ErrAdminRequired = errors.New("admin role required")
	// ErrPhotoRequired is returned when a publication is created without any
	// photo attachment.
	ErrPhotoRequired = errors.New("at least one photo is required")
)

// ErrorResponse represents a standardized error response. Details is only
// populated for validation failures.
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Details    []string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string, details ...string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Details:    details,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error:   e.Message,
		Details: e.Details,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Unknown errors collapse
// to a generic 500 so internal detail never reaches the client.
func MapErrorToHTTP(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}

	switch {
	case errors.Is(err, ErrInvalidCredentials), errors.Is(err, ErrPhotoRequired):
		return NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrPublicationNotFound), errors.Is(err, ErrCommentNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNotOwner), errors.Is(err, ErrAdminRequired):
		return NewHTTPError(http.StatusForbidden, err.Error())
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
