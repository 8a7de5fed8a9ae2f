// Package httpx implements the uniform response envelope used by every
// endpoint and the boundary translation from error kinds to HTTP statuses.
package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/devsaround/blog-api/internal/apperr"
)

// Envelope is the wire shape of every API response.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Meta    *Meta  `json:"meta,omitempty"`
	Error   any    `json:"error,omitempty"`
}

// Meta carries pagination metadata for list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Success writes a success envelope.
func Success(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, Envelope{Status: "success", Message: message, Data: data})
}

// SuccessMeta writes a success envelope with pagination metadata.
func SuccessMeta(w http.ResponseWriter, status int, message string, data any, meta Meta) {
	writeJSON(w, status, Envelope{Status: "success", Message: message, Data: data, Meta: &meta})
}

// Fail writes an error envelope with the given status and message.
func Fail(w http.ResponseWriter, status int, message string, detail any) {
	writeJSON(w, status, Envelope{Status: "error", Message: message, Error: detail})
}

var statusByKind = map[apperr.Kind]int{
	apperr.KindValidation:   http.StatusUnprocessableEntity,
	apperr.KindUnauthorized: http.StatusUnauthorized,
	apperr.KindForbidden:    http.StatusForbidden,
	apperr.KindNotFound:     http.StatusNotFound,
	apperr.KindConflict:     http.StatusConflict,
	apperr.KindBadRequest:   http.StatusBadRequest,
	apperr.KindInternal:     http.StatusInternalServerError,
}

// Translator maps flow errors to envelope responses. Development mode adds
// the underlying error text to internal responses.
type Translator struct {
	Development bool
}

// Err translates err into an error envelope. Untyped errors become an
// internal error with a generic message and get logged here, at the
// boundary.
func (t Translator) Err(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.AsError(err)
	status := statusByKind[e.Kind]

	var detail any
	if len(e.Fields) > 0 {
		detail = e.Fields
	}

	if e.Kind == apperr.KindInternal {
		slog.ErrorContext(r.Context(), "unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		if t.Development {
			detail = err.Error()
		}
	}

	Fail(w, status, e.Message, detail)
}
