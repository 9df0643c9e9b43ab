package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/g1000/portal/internal/domain"
)

// Envelope is the standard API response wrapper: {"data": ...} on success,
// {"error": "...", "details": [...]} on failure.
type Envelope struct {
	Data    any             `json:"data,omitempty"`
	Meta    *PaginationMeta `json:"meta,omitempty"`
	Error   string          `json:"error,omitempty"`
	Details []FieldError    `json:"details,omitempty"`
}

// PaginationMeta holds page-based pagination info.
type PaginationMeta struct {
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
}

// FieldError represents a field-level validation error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// WriteJSON writes a success response with the standard envelope.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	writeEnvelope(w, status, Envelope{Data: data})
}

// WriteList writes a paginated list response.
func WriteList(w http.ResponseWriter, status int, data any, meta PaginationMeta) {
	writeEnvelope(w, status, Envelope{Data: data, Meta: &meta})
}

// WriteError maps the error to an HTTP status and writes the error envelope.
func WriteError(w http.ResponseWriter, err error) {
	status, envelope := mapError(err)
	writeEnvelope(w, status, envelope)
}

func writeEnvelope(w http.ResponseWriter, status int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func mapError(err error) (int, Envelope) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, Envelope{Error: "The requested resource was not found"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, Envelope{Error: "Authentication is required"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, Envelope{Error: "You do not have permission to perform this action"}
	case errors.Is(err, domain.ErrInvalidState):
		return http.StatusUnprocessableEntity, Envelope{Error: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, Envelope{Error: err.Error()}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, Envelope{Error: "The request body is invalid"}
	default:
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return http.StatusBadRequest, Envelope{
				Error: "Validation failed",
				Details: []FieldError{
					{Field: validationErr.Field, Message: validationErr.Message},
				},
			}
		}

		slog.Error("unhandled error", "error", err)
		return http.StatusInternalServerError, Envelope{Error: "An unexpected error occurred"}
	}
}
