package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/customer-intake-api/internal/application/verification"
	"github.com/customer-intake-api/internal/domain"
)

// Reasons reported to OTP clients.
const (
	ReasonValidation        = "validation"
	ReasonNotFound          = "not_found"
	ReasonExpired           = "expired"
	ReasonAttemptsExhausted = "attempts_exhausted"
	ReasonInvalidCode       = "invalid_code"
)

// OTPHandler serves the issue and verify endpoints.
type OTPHandler struct {
	svc verification.Service
}

func NewOTPHandler(svc verification.Service) *OTPHandler { return &OTPHandler{svc: svc} }

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OTPResultEnvelope{Error: "invalid request body", Reason: ReasonValidation})
		return
	}
	expiresAt, err := h.svc.Issue(r.Context(), req.PhoneNumber)
	if errors.Is(err, domain.ErrBadRequest) {
		writeJSON(w, http.StatusBadRequest, OTPResultEnvelope{Error: "Phone number is required", Reason: ReasonValidation})
		return
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, FailureEnvelope{Error: "Failed to send OTP", Details: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, OTPResultEnvelope{
		Success:   true,
		Message:   "OTP sent successfully",
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OTPResultEnvelope{Error: "invalid request body", Reason: ReasonValidation})
		return
	}
	err := h.svc.Verify(r.Context(), req.PhoneNumber, req.OTPCode)
	if err == nil {
		writeJSON(w, http.StatusOK, OTPResultEnvelope{Success: true, Message: "Phone number verified successfully"})
		return
	}

	var mismatch *domain.MismatchError
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, OTPResultEnvelope{Error: "Phone number and OTP code are required", Reason: ReasonValidation})
	case errors.Is(err, domain.ErrOTPNotFound):
		writeJSON(w, http.StatusBadRequest, OTPResultEnvelope{Error: "No valid OTP found for this phone number", Reason: ReasonNotFound})
	case errors.Is(err, domain.ErrOTPExpired):
		writeJSON(w, http.StatusBadRequest, OTPResultEnvelope{Error: "OTP has expired. Please request a new one.", Reason: ReasonExpired})
	case errors.Is(err, domain.ErrOTPAttemptsExhausted):
		writeJSON(w, http.StatusBadRequest, OTPResultEnvelope{Error: "Too many attempts. Please request a new OTP.", Reason: ReasonAttemptsExhausted})
	case errors.As(err, &mismatch):
		left := mismatch.AttemptsLeft
		writeJSON(w, http.StatusBadRequest, OTPResultEnvelope{Error: "Invalid OTP code. Please try again.", Reason: ReasonInvalidCode, AttemptsLeft: &left})
	default:
		writeJSON(w, http.StatusInternalServerError, FailureEnvelope{Error: "Failed to verify OTP", Details: err.Error()})
	}
}

// Preflight answers OPTIONS on the OTP routes.
func Preflight(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
