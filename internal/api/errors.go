package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hangsome/system-builder-studio/internal/circuit"
	"github.com/hangsome/system-builder-studio/internal/simulation"
	"github.com/hangsome/system-builder-studio/internal/world"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeInternal     = "internal_error"
	ErrCodeValidation   = "validation_error"
	ErrCodeInvalidWire  = "invalid_wire"
	ErrCodeNotReady     = "not_ready"
	ErrCodeUnavailable  = "unavailable"
	ErrCodeBodyTooLarge = "body_too_large"
)

// readinessError is the 409 body returned when the simulation cannot start.
type readinessError struct {
	Error
	Issues []string `json:"issues"`
}

// wireError is the 422 body returned when a wire is rejected.
type wireError struct {
	Error
	Result circuit.Result `json:"result"`
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeNotFound writes a 404 error response.
func writeNotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, ErrCodeNotFound, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeDecodeError reports a request body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, ErrCodeBodyTooLarge, "request body too large")
		return
	}
	writeBadRequest(w, "invalid JSON body")
}

// writeDomainError maps a world or simulation error to a response.
// Unrecognised errors are logged and reported as 500.
func (s *Server) writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var notReady *simulation.ReadinessError
	switch {
	case errors.As(err, &notReady):
		status := http.StatusConflict
		writeJSON(w, status, readinessError{
			Error:  Error{Status: status, Code: ErrCodeNotReady, Message: simulation.ErrNotReady.Error()},
			Issues: notReady.Issues,
		})
	case errors.Is(err, world.ErrComponentNotFound),
		errors.Is(err, world.ErrWireNotFound),
		errors.Is(err, world.ErrScenarioNotFound),
		errors.Is(err, world.ErrLayoutNotFound):
		writeNotFound(w, err.Error())
	case errors.Is(err, world.ErrDuplicateWire),
		errors.Is(err, world.ErrNoController):
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
	case errors.Is(err, world.ErrUnknownDefinition),
		errors.Is(err, world.ErrInvalidSpeed),
		errors.Is(err, world.ErrInvalidServer),
		errors.Is(err, world.ErrNotSensor),
		errors.Is(err, world.ErrInvalidLayout),
		errors.Is(err, circuit.ErrInvalidWire):
		writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, err.Error())
	default:
		s.logger.Error("request failed", "error", err, "path", r.URL.Path, "request_id", requestID(r.Context()))
		writeInternalError(w, "internal server error")
	}
}
