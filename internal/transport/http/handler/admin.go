package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/customer-intake-api/internal/application/admin"
	"github.com/customer-intake-api/internal/application/retention"
	"github.com/customer-intake-api/internal/application/verification"
	"github.com/customer-intake-api/internal/domain"
	"github.com/customer-intake-api/internal/pkg/phone"
	"github.com/customer-intake-api/internal/pkg/validate"
	"github.com/go-chi/chi/v5"
)

// AdminHandler serves dashboard login and the operator views of
// verification records.
type AdminHandler struct {
	auth          admin.Service
	verifications verification.Service
	retention     retention.Service
}

func NewAdminHandler(auth admin.Service, verifications verification.Service, retention retention.Service) *AdminHandler {
	return &AdminHandler{auth: auth, verifications: verifications, retention: retention}
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sess, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AdminSessionEnvelope{
		Bearer:    sess.Bearer,
		AdminID:   sess.AdminID,
		ExpiresAt: sess.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AdminHandler) Verifications(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "phone")
	records, err := h.verifications.History(r.Context(), raw)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, VerificationsEnvelope{PhoneNumber: phone.Normalize(raw), Data: records})
}

func (h *AdminHandler) Purge(w http.ResponseWriter, r *http.Request) {
	res, err := h.retention.Sweep(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
