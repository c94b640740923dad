package web

// errors.go provides unified error response handling for the web layer.
//
// Every handler error flows through respondError, which:
//   - Logs the technical error with the request ID for correlation
//   - Maps the core error taxonomy to an HTTP status and a stable code
//   - Returns a JSON body a client can show verbatim

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ecomlab/salesdesk/internal/core"
	"github.com/ecomlab/salesdesk/internal/logging"
)

// ErrorResponse is the JSON structure for API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError writes a JSON error response derived from err. When status is
// zero it is inferred from the core error taxonomy.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	code := "INTERNAL"
	switch {
	case core.IsValidation(err):
		code = "VALIDATION"
		if status == 0 {
			status = http.StatusUnprocessableEntity
		}
	case errors.Is(err, core.ErrNotFound):
		code = "NOT_FOUND"
		if status == 0 {
			status = http.StatusNotFound
		}
	case errors.Is(err, core.ErrNoRecords):
		code = "EMPTY"
		if status == 0 {
			status = http.StatusConflict
		}
	}
	if status == 0 {
		status = http.StatusInternalServerError
	}

	logging.FromContext(r.Context()).Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err.Error(),
	)

	respondJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

// respondJSON writes v as a JSON response with the given status.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
