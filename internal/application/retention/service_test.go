package retention

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/customer-intake-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct{ mock.Mock }

func (m *mockStore) ScanPurgeable(ctx context.Context, now time.Time, limit int) ([]domain.Verification, error) {
	args := m.Called(ctx, now, limit)
	v, _ := args.Get(0).([]domain.Verification)
	return v, args.Error(1)
}
func (m *mockStore) Delete(ctx context.Context, phone, verificationID string) error {
	return m.Called(ctx, phone, verificationID).Error(0)
}

type mockArchiver struct{ mock.Mock }

func (m *mockArchiver) Archive(ctx context.Context, key string, records []domain.Verification) (string, error) {
	args := m.Called(ctx, key, records)
	return args.String(0), args.Error(1)
}

var sweepAt = time.Date(2026, 3, 1, 4, 0, 0, 0, time.UTC)

func expired() []domain.Verification {
	return []domain.Verification{
		{PhoneNumber: "+12465551234", VerificationID: "01A"},
		{PhoneNumber: "+12465559999", VerificationID: "01B"},
	}
}

func TestSweep_ArchivesThenDeletes(t *testing.T) {
	store := &mockStore{}
	arch := &mockArchiver{}
	store.On("ScanPurgeable", mock.Anything, sweepAt, 50).Return(expired(), nil)
	arch.On("Archive", mock.Anything, mock.MatchedBy(func(k string) bool {
		return strings.HasPrefix(k, "verifications/2026/03/01/") && strings.HasSuffix(k, ".jsonl")
	}), expired()).Return("s3://bucket/key", nil)
	store.On("Delete", mock.Anything, "+12465551234", "01A").Return(nil)
	store.On("Delete", mock.Anything, "+12465559999", "01B").Return(nil)

	svc := NewService(ServiceDeps{Repo: store, Archive: arch, BatchSize: 50, Now: func() time.Time { return sweepAt }})
	res, err := svc.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.PurgeResult{Scanned: 2, Archived: 2, Deleted: 2, Archive: "s3://bucket/key"}, res)
	store.AssertExpectations(t)
	arch.AssertExpectations(t)
}

func TestSweep_ArchiveFailureKeepsRecords(t *testing.T) {
	store := &mockStore{}
	arch := &mockArchiver{}
	store.On("ScanPurgeable", mock.Anything, sweepAt, DefaultBatchSize).Return(expired(), nil)
	arch.On("Archive", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("access denied"))

	svc := NewService(ServiceDeps{Repo: store, Archive: arch, Now: func() time.Time { return sweepAt }})
	res, err := svc.Sweep(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, res.Deleted)
	store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestSweep_WithoutArchive(t *testing.T) {
	store := &mockStore{}
	store.On("ScanPurgeable", mock.Anything, sweepAt, DefaultBatchSize).Return(expired(), nil)
	store.On("Delete", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	res, err := NewService(ServiceDeps{Repo: store, Now: func() time.Time { return sweepAt }}).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, res.Archived)
	assert.Equal(t, 2, res.Deleted)
}

func TestSweep_NothingToDo(t *testing.T) {
	store := &mockStore{}
	store.On("ScanPurgeable", mock.Anything, sweepAt, DefaultBatchSize).Return(nil, nil)

	res, err := NewService(ServiceDeps{Repo: store, Archive: &mockArchiver{}, Now: func() time.Time { return sweepAt }}).Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &domain.PurgeResult{}, res)
}
