// Package verification issues and checks one-time passcodes for phone numbers.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/customer-intake-api/internal/domain"
	"github.com/customer-intake-api/internal/infrastructure/messaging"
	"github.com/customer-intake-api/internal/pkg/id"
	"github.com/customer-intake-api/internal/pkg/otp"
	"github.com/customer-intake-api/internal/pkg/phone"
)

type Service interface {
	// Issue replaces any outstanding code for the number with a fresh one and
	// sends it. It returns the new code's expiry.
	Issue(ctx context.Context, rawPhone string) (time.Time, error)
	// Verify checks code against the latest unverified record for the number.
	Verify(ctx context.Context, rawPhone, code string) error
	// History lists every record for the number, newest first, codes redacted.
	History(ctx context.Context, rawPhone string) ([]domain.Verification, error)
}

type verificationStore interface {
	Put(ctx context.Context, v *domain.Verification) error
	DeleteByPhone(ctx context.Context, phone string) (int, error)
	ListByPhone(ctx context.Context, phone string) ([]domain.Verification, error)
	LatestPending(ctx context.Context, phone string) (*domain.Verification, error)
	IncrementAttempts(ctx context.Context, phone, verificationID string, maxAttempts int) (int, error)
	MarkVerified(ctx context.Context, phone, verificationID string, at time.Time, maxAttempts int) error
}

type service struct {
	repo        verificationStore
	sender      messaging.Sender
	ttl         time.Duration
	maxAttempts int
	retention   time.Duration
	templateID  string
	now         func() time.Time
	newCode     func() (string, error)
}

type ServiceDeps struct {
	Repo        verificationStore
	Sender      messaging.Sender
	TTL         time.Duration
	MaxAttempts int
	Retention   time.Duration
	TemplateID  string
	// Now and NewCode default to the wall clock and crypto/rand codes.
	Now     func() time.Time
	NewCode func() (string, error)
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:        deps.Repo,
		sender:      deps.Sender,
		ttl:         deps.TTL,
		maxAttempts: deps.MaxAttempts,
		retention:   deps.Retention,
		templateID:  deps.TemplateID,
		now:         deps.Now,
		newCode:     deps.NewCode,
	}
	if s.ttl <= 0 {
		s.ttl = 10 * time.Minute
	}
	if s.maxAttempts <= 0 {
		s.maxAttempts = 3
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newCode == nil {
		s.newCode = otp.NewCode
	}
	return s
}

func normalize(raw string) (string, error) {
	p := phone.Normalize(raw)
	if !phone.HasDigits(p) {
		return "", fmt.Errorf("phone number is required: %w", domain.ErrBadRequest)
	}
	return p, nil
}

func (s *service) Issue(ctx context.Context, rawPhone string) (time.Time, error) {
	p, err := normalize(rawPhone)
	if err != nil {
		return time.Time{}, err
	}
	code, err := s.newCode()
	if err != nil {
		return time.Time{}, err
	}
	now := s.now().UTC()
	expiresAt := now.Add(s.ttl)

	deleted, err := s.repo.DeleteByPhone(ctx, p)
	if err != nil {
		return time.Time{}, fmt.Errorf("clear previous codes: %w", err)
	}
	v := &domain.Verification{
		PhoneNumber:    p,
		VerificationID: id.New(),
		OTPCode:        code,
		ExpiresAt:      expiresAt,
		CreatedAt:      now,
		PurgeAt:        expiresAt.Add(s.retention).Unix(),
	}
	if err := s.repo.Put(ctx, v); err != nil {
		return time.Time{}, fmt.Errorf("store code: %w", err)
	}
	slog.InfoContext(ctx, "otp issued", "phone", p, "verification_id", v.VerificationID, "superseded", deleted)

	// The stored record stays if dispatch fails; a resend supersedes it.
	if err := s.sender.Send(ctx, messaging.OTPMessage(p, s.templateID, code)); err != nil {
		slog.ErrorContext(ctx, "otp dispatch failed", "phone", p, "error", err)
		return time.Time{}, fmt.Errorf("send code: %w", err)
	}
	return expiresAt, nil
}

func (s *service) Verify(ctx context.Context, rawPhone, code string) error {
	p, err := normalize(rawPhone)
	if err != nil {
		return err
	}
	if code == "" {
		return fmt.Errorf("otp code is required: %w", domain.ErrBadRequest)
	}

	v, err := s.repo.LatestPending(ctx, p)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.ErrOTPNotFound
	}
	if err != nil {
		return fmt.Errorf("load code: %w", err)
	}

	now := s.now().UTC()
	if v.Expired(now) {
		return domain.ErrOTPExpired
	}
	if v.Attempts >= s.maxAttempts {
		return domain.ErrOTPAttemptsExhausted
	}

	if v.OTPCode != code {
		n, err := s.repo.IncrementAttempts(ctx, p, v.VerificationID, s.maxAttempts)
		if err != nil {
			return err
		}
		slog.WarnContext(ctx, "otp mismatch", "phone", p, "attempts", n)
		return &domain.MismatchError{AttemptsLeft: s.maxAttempts - n}
	}

	if err := s.repo.MarkVerified(ctx, p, v.VerificationID, now, s.maxAttempts); err != nil {
		return err
	}
	slog.InfoContext(ctx, "phone verified", "phone", p, "verification_id", v.VerificationID)
	return nil
}

func (s *service) History(ctx context.Context, rawPhone string) ([]domain.Verification, error) {
	p, err := normalize(rawPhone)
	if err != nil {
		return nil, err
	}
	records, err := s.repo.ListByPhone(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Verification, 0, len(records))
	for _, r := range records {
		out = append(out, r.Redacted())
	}
	return out, nil
}
