package http

import (
	"context"
	"time"

	"github.com/customer-intake-api/internal/domain"
)

// VerificationRepository is the minimal interface the router requires from a verification store.
type VerificationRepository interface {
	Put(ctx context.Context, v *domain.Verification) error
	DeleteByPhone(ctx context.Context, phone string) (int, error)
	Delete(ctx context.Context, phone, verificationID string) error
	ListByPhone(ctx context.Context, phone string) ([]domain.Verification, error)
	// LatestPending and LatestVerified walk the partition newest first.
	LatestPending(ctx context.Context, phone string) (*domain.Verification, error)
	LatestVerified(ctx context.Context, phone string) (*domain.Verification, error)
	IncrementAttempts(ctx context.Context, phone, verificationID string, maxAttempts int) (int, error)
	MarkVerified(ctx context.Context, phone, verificationID string, at time.Time, maxAttempts int) error
	ScanPurgeable(ctx context.Context, now time.Time, limit int) ([]domain.Verification, error)
}

// CustomerRepository is the minimal interface the router requires from a customer store.
type CustomerRepository interface {
	Put(ctx context.Context, c *domain.Customer) error
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	ExistsByWhatsApp(ctx context.Context, phone string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Page(ctx context.Context, limit int32, cursor string) (*domain.CustomerPage, error)
}

// Archiver is the minimal interface the router requires from the retention archive.
type Archiver interface {
	Archive(ctx context.Context, key string, records []domain.Verification) (string, error)
}
