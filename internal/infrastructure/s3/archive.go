package s3infra

import (
	"context"

	"github.com/customer-intake-api/internal/domain"
)

// VerificationArchive writes retention batches as JSON Lines objects.
type VerificationArchive struct {
	store *Store
}

func NewVerificationArchive(store *Store) *VerificationArchive {
	return &VerificationArchive{store: store}
}

func (a *VerificationArchive) Archive(ctx context.Context, key string, records []domain.Verification) (string, error) {
	return PutJSONLines(ctx, a.store, key, records)
}
