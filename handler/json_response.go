package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/medstock/pkg/validator"
)

// JSONResponse is the standard JSON envelope.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail describes an error in a JSON envelope.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures a JSON response.
type JSONOption func(*jsonResponse)

// WithJSONStatus sets the HTTP status code.
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta adds metadata to the envelope.
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON wraps v in the data field of the envelope.
func JSON(v any, opts ...JSONOption) Response {
	r := &jsonResponse{status: http.StatusOK, body: JSONResponse{Data: v}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// JSONError renders detail with status.
func JSONError(status int, detail ErrorDetail, opts ...JSONOption) Response {
	r := &jsonResponse{status: status, body: JSONResponse{Error: &detail}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// validationDetail converts validation errors into an ErrorDetail.
func validationDetail(err error) (ErrorDetail, bool) {
	if !errors.Is(err, validator.ErrValidationFailed) {
		return ErrorDetail{}, false
	}
	verrs := validator.ExtractValidationErrors(err)
	return ErrorDetail{
		Code:    "validation_error",
		Message: "validation failed",
		Details: verrs.Map(),
	}, true
}
