package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/customer-intake-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockAdminSvc struct{ mock.Mock }

func (m *mockAdminSvc) Login(ctx context.Context, req domain.AdminLoginRequest) (*domain.AdminSession, error) {
	args := m.Called(ctx, req)
	if s, _ := args.Get(0).(*domain.AdminSession); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockRetentionSvc struct{ mock.Mock }

func (m *mockRetentionSvc) Sweep(ctx context.Context) (*domain.PurgeResult, error) {
	args := m.Called(ctx)
	if r, _ := args.Get(0).(*domain.PurgeResult); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func TestAdminLogin_HappyPath(t *testing.T) {
	auth := &mockAdminSvc{}
	exp := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	auth.On("Login", mock.Anything, domain.AdminLoginRequest{Email: "owner@shop.com", Password: "pw"}).
		Return(&domain.AdminSession{Bearer: "tok", AdminID: "owner@shop.com", ExpiresAt: exp}, nil)

	rr := httptest.NewRecorder()
	NewAdminHandler(auth, nil, nil).Login(rr, postJSON(t, "/v1/admin/sessions", domain.AdminLoginRequest{Email: "owner@shop.com", Password: "pw"}))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"Bearer":"tok","admin_id":"owner@shop.com","expiresAt":"2026-03-01T20:00:00Z"}`, rr.Body.String())
}

func TestAdminLogin_Rejected(t *testing.T) {
	auth := &mockAdminSvc{}
	auth.On("Login", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized))

	rr := httptest.NewRecorder()
	NewAdminHandler(auth, nil, nil).Login(rr, postJSON(t, "/v1/admin/sessions", domain.AdminLoginRequest{Email: "owner@shop.com", Password: "nope"}))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminLogin_ValidationFailure(t *testing.T) {
	auth := &mockAdminSvc{}
	rr := httptest.NewRecorder()
	NewAdminHandler(auth, nil, nil).Login(rr, postJSON(t, "/v1/admin/sessions", domain.AdminLoginRequest{Email: "not-an-email"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAdminVerifications(t *testing.T) {
	svc := &mockVerificationSvc{}
	svc.On("History", mock.Anything, "12465551234").Return([]domain.Verification{
		{PhoneNumber: "+12465551234", VerificationID: "01A", Attempts: 1},
	}, nil)

	rr := httptest.NewRecorder()
	req := withChiParam(httptest.NewRequest(http.MethodGet, "/v1/admin/verifications/12465551234", nil), "phone", "12465551234")
	NewAdminHandler(nil, svc, nil).Verifications(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decode(t, rr)
	assert.Equal(t, "+12465551234", body["phone_number"])
	assert.Len(t, body["data"], 1)
	assert.NotContains(t, rr.Body.String(), "otp_code")
}

func TestAdminPurge(t *testing.T) {
	ret := &mockRetentionSvc{}
	ret.On("Sweep", mock.Anything).Return(&domain.PurgeResult{Scanned: 3, Archived: 3, Deleted: 3}, nil)

	rr := httptest.NewRecorder()
	NewAdminHandler(nil, nil, ret).Purge(rr, httptest.NewRequest(http.MethodPost, "/v1/admin/verifications/purge", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"scanned":3,"archived":3,"deleted":3}`, rr.Body.String())
}
