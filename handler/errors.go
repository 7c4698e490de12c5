package handler

import (
	"errors"
	"net/http"
)

var (
	// ErrNilResponse indicates a handler returned nil instead of a Response.
	ErrNilResponse = errors.New("handler returned nil response")
	// ErrSSENotInitialized indicates SSE was used on a non-DataStar request.
	ErrSSENotInitialized = errors.New("SSE not initialized for this request")
)

// HTTPError is an error with an HTTP status and a stable message key.
type HTTPError struct {
	Code int
	Key  string
}

func (e HTTPError) Error() string {
	return e.Key
}

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, key string) HTTPError {
	return HTTPError{Code: code, Key: key}
}

var (
	ErrBadRequest = NewHTTPError(http.StatusBadRequest, "bad_request")
	ErrNotFound   = NewHTTPError(http.StatusNotFound, "not_found")
)
