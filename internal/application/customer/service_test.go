package customer

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/customer-intake-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCustomerStore struct{ mock.Mock }

func (m *mockCustomerStore) Put(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCustomerStore) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, _ := args.Get(0).(*domain.Customer); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCustomerStore) ExistsByWhatsApp(ctx context.Context, phone string) (bool, error) {
	args := m.Called(ctx, phone)
	return args.Bool(0), args.Error(1)
}
func (m *mockCustomerStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *mockCustomerStore) Page(ctx context.Context, limit int32, cursor string) (*domain.CustomerPage, error) {
	args := m.Called(ctx, limit, cursor)
	if p, _ := args.Get(0).(*domain.CustomerPage); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockVerificationLookup struct{ mock.Mock }

func (m *mockVerificationLookup) LatestVerified(ctx context.Context, phone string) (*domain.Verification, error) {
	args := m.Called(ctx, phone)
	if v, _ := args.Get(0).(*domain.Verification); v != nil {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

// 2026-03-01 12:00 in Barbados (UTC-4).
var fixedNow = time.Date(2026, 3, 1, 16, 0, 0, 0, time.UTC)

func newService(t *testing.T, cs *mockCustomerStore, vl *mockVerificationLookup, requireVerified bool) Service {
	t.Helper()
	return NewService(ServiceDeps{
		Repo:                 cs,
		Verifications:        vl,
		RequireVerifiedPhone: requireVerified,
		VerificationWindow:   time.Hour,
		Now:                  func() time.Time { return fixedNow },
	})
}

func verifiedAt(t time.Time) *domain.Verification {
	return &domain.Verification{PhoneNumber: "+12465551234", Verified: true, VerifiedAt: &t}
}

// --- Register ---

func TestRegister_Success(t *testing.T) {
	cs := &mockCustomerStore{}
	vl := &mockVerificationLookup{}
	vl.On("LatestVerified", mock.Anything, "+12465551234").Return(verifiedAt(fixedNow.Add(-10*time.Minute)), nil)
	cs.On("ExistsByWhatsApp", mock.Anything, "+12465551234").Return(false, nil)
	cs.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(false, nil)
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.Customer")).Return(nil)

	req := validRequest()
	req.PurchaseGiftCards = "yes"
	req.SelectedGiftCards = []string{"amazon", "roblox"}
	req.GiftCardUsernames = map[string]string{"amazon": " Me@Example.com ", "roblox": "  "}

	c, err := newService(t, cs, vl, true).Register(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, c.CustomerID)
	assert.Equal(t, "Jane Doe", c.FullName)
	require.NotNil(t, c.Email)
	assert.Equal(t, "jane@example.com", *c.Email)
	assert.Equal(t, "+12465551234", c.WhatsAppNumber)
	assert.False(t, c.IsMinor)
	assert.True(t, c.TermsAccepted)
	assert.Equal(t, fixedNow, c.TermsAcceptedAt)
	assert.Equal(t, []string{domain.CategoryVideoGames, domain.CategoryGiftCards}, c.ShopCategories)
	require.Len(t, c.GiftCards, 2)
	require.NotNil(t, c.GiftCards[0].Username)
	assert.Equal(t, "me@example.com", *c.GiftCards[0].Username)
	assert.Nil(t, c.GiftCards[1].Username)
	assert.Equal(t, []string{"ps5"}, c.Consoles)
	assert.Equal(t, []string{}, c.RetroConsoles)
	cs.AssertExpectations(t)
	vl.AssertExpectations(t)
}

func TestRegister_Minor(t *testing.T) {
	cs := &mockCustomerStore{}
	cs.On("ExistsByWhatsApp", mock.Anything, mock.Anything).Return(false, nil)
	cs.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	cs.On("Put", mock.Anything, mock.Anything).Return(nil)

	req := validRequest()
	req.DOB = "2012-06-01"
	req.GuardianFullName = "john doe"
	req.GuardianDOB = "1980-02-02"
	req.GuardianWhatsAppNumber = "246 555 0000"

	c, err := newService(t, cs, &mockVerificationLookup{}, false).Register(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, c.IsMinor)
	require.NotNil(t, c.GuardianFullName)
	assert.Equal(t, "John Doe", *c.GuardianFullName)
	require.NotNil(t, c.GuardianWhatsAppNumber)
	assert.Equal(t, "+2465550000", *c.GuardianWhatsAppNumber)
	assert.Equal(t, []string{domain.CategoryVideoGames}, c.ShopCategories)
}

func TestRegister_ValidationError(t *testing.T) {
	cs := &mockCustomerStore{}
	req := validRequest()
	req.AcceptedTerms = false

	_, err := newService(t, cs, &mockVerificationLookup{}, true).Register(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "acceptedTerms")
	cs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_PhoneNotVerified(t *testing.T) {
	cases := map[string]func(vl *mockVerificationLookup){
		"never verified": func(vl *mockVerificationLookup) {
			vl.On("LatestVerified", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("x: %w", domain.ErrNotFound))
		},
		"verified too long ago": func(vl *mockVerificationLookup) {
			vl.On("LatestVerified", mock.Anything, mock.Anything).Return(verifiedAt(fixedNow.Add(-2*time.Hour)), nil)
		},
	}
	for name, setup := range cases {
		t.Run(name, func(t *testing.T) {
			cs := &mockCustomerStore{}
			vl := &mockVerificationLookup{}
			setup(vl)
			_, err := newService(t, cs, vl, true).Register(context.Background(), validRequest())
			assert.ErrorIs(t, err, domain.ErrForbidden)
			cs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
		})
	}
}

func TestRegister_DuplicateWhatsApp(t *testing.T) {
	cs := &mockCustomerStore{}
	cs.On("ExistsByWhatsApp", mock.Anything, "+12465551234").Return(true, nil)

	_, err := newService(t, cs, &mockVerificationLookup{}, false).Register(context.Background(), validRequest())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "WhatsApp")
	cs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	cs := &mockCustomerStore{}
	cs.On("ExistsByWhatsApp", mock.Anything, mock.Anything).Return(false, nil)
	cs.On("ExistsByEmail", mock.Anything, "jane@example.com").Return(true, nil)

	_, err := newService(t, cs, &mockVerificationLookup{}, false).Register(context.Background(), validRequest())
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Contains(t, err.Error(), "email")
}

// A concurrent registration can claim the number after the read checks pass;
// the store's conditional write reports it.
func TestRegister_ConflictAtWrite(t *testing.T) {
	cs := &mockCustomerStore{}
	cs.On("ExistsByWhatsApp", mock.Anything, mock.Anything).Return(false, nil)
	cs.On("ExistsByEmail", mock.Anything, mock.Anything).Return(false, nil)
	cs.On("Put", mock.Anything, mock.Anything).Return(domain.ErrWhatsAppTaken)

	c, err := newService(t, cs, &mockVerificationLookup{}, false).Register(context.Background(), validRequest())
	assert.Nil(t, c)
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.ErrorIs(t, err, domain.ErrWhatsAppTaken)
}

// --- List ---

func TestList_ClampsLimit(t *testing.T) {
	cs := &mockCustomerStore{}
	page := &domain.CustomerPage{Data: []domain.Customer{}}
	cs.On("Page", mock.Anything, int32(defaultPageSize), "").Return(page, nil).Once()
	cs.On("Page", mock.Anything, int32(maxPageSize), "abc").Return(page, nil).Once()

	svc := newService(t, cs, &mockVerificationLookup{}, false)
	_, err := svc.List(context.Background(), 0, "")
	require.NoError(t, err)
	_, err = svc.List(context.Background(), 5000, "abc")
	require.NoError(t, err)
	cs.AssertExpectations(t)
}
