package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/customer-intake-api/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OTPResultEnvelope is the body of every non-500 OTP response.
type OTPResultEnvelope struct {
	Success      bool   `json:"success"`
	Message      string `json:"message,omitempty"`
	Error        string `json:"error,omitempty"`
	Reason       string `json:"reason,omitempty"`
	ExpiresAt    string `json:"expiresAt,omitempty"`
	AttemptsLeft *int   `json:"attemptsLeft,omitempty"`
}

// FailureEnvelope reports a dependency failure with diagnostic detail.
type FailureEnvelope struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// ValidationEnvelope lists per-field problems of a submitted form.
type ValidationEnvelope struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// CreatedEnvelope returns the id of a new resource.
type CreatedEnvelope struct {
	ID string `json:"id"`
}

// AdminSessionEnvelope wraps login responses.
type AdminSessionEnvelope struct {
	Bearer    string `json:"Bearer"`
	AdminID   string `json:"admin_id"`
	ExpiresAt string `json:"expiresAt"`
}

// VerificationsEnvelope wraps a phone number's verification history.
type VerificationsEnvelope struct {
	PhoneNumber string                `json:"phone_number"`
	Data        []domain.Verification `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// writeServiceError maps domain sentinels to status codes for the customer
// and admin endpoints.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var fields domain.FieldErrors
	switch {
	case errors.As(err, &fields):
		writeJSON(w, http.StatusBadRequest, ValidationEnvelope{Error: "validation failed", Fields: fields})
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, domain.ErrForbidden):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// MethodNotAllowed answers unsupported methods with a JSON body.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// NotFound answers unknown routes with a JSON body.
func NotFound(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}
