// Package admin authenticates dashboard operators.
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/customer-intake-api/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

type Service interface {
	Login(ctx context.Context, req domain.AdminLoginRequest) (*domain.AdminSession, error)
}

type tokenSigner interface {
	Sign(adminID, role string) (string, time.Time, error)
}

type service struct {
	users  map[string]string // email -> bcrypt hash
	signer tokenSigner
}

func NewService(users map[string]string, signer tokenSigner) Service {
	return &service{users: users, signer: signer}
}

func (s *service) Login(ctx context.Context, req domain.AdminLoginRequest) (*domain.AdminSession, error) {
	if s.signer == nil {
		return nil, fmt.Errorf("admin login disabled: %w", domain.ErrForbidden)
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	hash, ok := s.users[email]
	if !ok {
		slog.WarnContext(ctx, "admin login unknown account", "email", email)
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		slog.WarnContext(ctx, "admin login bad password", "email", email)
		return nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}
	token, expiresAt, err := s.signer.Sign(email, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	slog.InfoContext(ctx, "admin logged in", "email", email)
	return &domain.AdminSession{Bearer: token, AdminID: email, ExpiresAt: expiresAt}, nil
}
