// Package retention removes verification records past their retention period,
// optionally archiving them first.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/customer-intake-api/internal/domain"
	"github.com/customer-intake-api/internal/pkg/id"
)

// DefaultBatchSize bounds how many records one sweep handles.
const DefaultBatchSize = 1000

type Service interface {
	Sweep(ctx context.Context) (*domain.PurgeResult, error)
}

type verificationStore interface {
	ScanPurgeable(ctx context.Context, now time.Time, limit int) ([]domain.Verification, error)
	Delete(ctx context.Context, phone, verificationID string) error
}

// archiver stores a batch of records as one object and returns its location.
type archiver interface {
	Archive(ctx context.Context, key string, records []domain.Verification) (string, error)
}

type service struct {
	repo      verificationStore
	archive   archiver
	batchSize int
	now       func() time.Time
}

type ServiceDeps struct {
	Repo verificationStore
	// Archive is nil when archiving is disabled.
	Archive   archiver
	BatchSize int
	Now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		repo:      deps.Repo,
		archive:   deps.Archive,
		batchSize: deps.BatchSize,
		now:       deps.Now,
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultBatchSize
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// ArchiveKey is the object key for a sweep run at t.
func ArchiveKey(t time.Time) string {
	return fmt.Sprintf("verifications/%s/%s.jsonl", t.UTC().Format("2006/01/02"), id.New())
}

func (s *service) Sweep(ctx context.Context) (*domain.PurgeResult, error) {
	now := s.now()
	records, err := s.repo.ScanPurgeable(ctx, now, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("scan purgeable: %w", err)
	}
	res := &domain.PurgeResult{Scanned: len(records)}
	if len(records) == 0 {
		return res, nil
	}

	if s.archive != nil {
		loc, err := s.archive.Archive(ctx, ArchiveKey(now), records)
		if err != nil {
			return res, fmt.Errorf("archive verifications: %w", err)
		}
		res.Archived = len(records)
		res.Archive = loc
	}

	for _, v := range records {
		if err := s.repo.Delete(ctx, v.PhoneNumber, v.VerificationID); err != nil {
			return res, fmt.Errorf("delete verification %s: %w", v.VerificationID, err)
		}
		res.Deleted++
	}
	slog.InfoContext(ctx, "retention sweep finished",
		"scanned", res.Scanned, "archived", res.Archived, "deleted", res.Deleted, "archive", res.Archive)
	return res, nil
}
