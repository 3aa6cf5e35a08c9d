package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/OOP-2025-final-G02/Tabi-Navi/internal/domain"
)

// ErrorResponse is the JSON envelope of every non-2xx response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail carries a stable machine-readable code, a human-readable
// message, and for validation failures the offending field.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("handler: encode response", "error", err)
	}
}

// writeError maps a service error onto the HTTP error envelope.
// ErrAuditPersistence is checked first because it wraps the gateway cause,
// which may itself be a not-found.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrAuditPersistence):
		slog.ErrorContext(r.Context(), "audit persistence failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("audit_persistence_error", "the change could not be saved; reload the plan and retry"))
	case errors.As(err, &ve):
		writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{Error: ErrorDetail{
			Code: "validation_error", Message: ve.Message, Field: ve.Field,
		}})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusUnprocessableEntity, errorBody("validation_error", unwrapMessage(err)))
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not_found", unwrapMessage(err)))
	case errors.Is(err, domain.ErrInvariant):
		writeJSON(w, http.StatusConflict, errorBody("invariant_violation", unwrapMessage(err)))
	case errors.Is(err, domain.ErrGeneratorUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("generator_unavailable", "plan generation is not available"))
	default:
		slog.ErrorContext(r.Context(), "unhandled error", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody("internal_error", "internal server error"))
	}
}

// requestError answers a request rejected before reaching the service layer
// (malformed body or parameter). Oversized bodies get 413.
func requestError(w http.ResponseWriter, err error, message string) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody("payload_too_large", "request body too large"))
		return
	}
	writeJSON(w, http.StatusBadRequest, errorBody("bad_request", message))
}

func errorBody(code, message string) ErrorResponse {
	return ErrorResponse{Error: ErrorDetail{Code: code, Message: message}}
}

// unwrapMessage strips the "pkg.Type.Method: " call-site prefixes added by
// each layer, keeping the innermost human-readable text.
// e.g. "service.PlanService.ApplyOperation: invariant violation: day 1 must keep at least one item"
// → "invariant violation: day 1 must keep at least one item"
func unwrapMessage(err error) string {
	msg := err.Error()
	for {
		i := indexPrefix(msg)
		if i < 0 {
			return msg
		}
		msg = msg[i:]
	}
}

// indexPrefix returns the offset after a leading "a.B.C: " call-site prefix,
// or -1 when msg does not start with one.
func indexPrefix(msg string) int {
	dots := 0
	for i, c := range msg {
		switch {
		case c == '.':
			dots++
		case c == ':':
			if dots >= 2 && i+1 < len(msg) && msg[i+1] == ' ' {
				return i + 2
			}
			return -1
		case c == ' ':
			return -1
		}
	}
	return -1
}
