package admin

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/customer-intake-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type mockSigner struct{ mock.Mock }

func (m *mockSigner) Sign(adminID, role string) (string, time.Time, error) {
	args := m.Called(adminID, role)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func users(t *testing.T) map[string]string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret!"), bcrypt.MinCost)
	require.NoError(t, err)
	return map[string]string{"owner@shop.com": string(hash)}
}

func TestLogin_Success(t *testing.T) {
	exp := time.Now().Add(8 * time.Hour)
	signer := &mockSigner{}
	signer.On("Sign", "owner@shop.com", domain.RoleAdmin).Return("tok", exp, nil)

	sess, err := NewService(users(t), signer).Login(context.Background(), domain.AdminLoginRequest{
		Email: " Owner@Shop.com ", Password: "s3cret!",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", sess.Bearer)
	assert.Equal(t, "owner@shop.com", sess.AdminID)
	assert.Equal(t, exp, sess.ExpiresAt)
	signer.AssertExpectations(t)
}

func TestLogin_BadCredentials(t *testing.T) {
	signer := &mockSigner{}
	svc := NewService(users(t), signer)

	_, err := svc.Login(context.Background(), domain.AdminLoginRequest{Email: "owner@shop.com", Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Login(context.Background(), domain.AdminLoginRequest{Email: "nobody@shop.com", Password: "s3cret!"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	signer.AssertNotCalled(t, "Sign", mock.Anything, mock.Anything)
}

func TestLogin_SignerFailure(t *testing.T) {
	signer := &mockSigner{}
	signer.On("Sign", mock.Anything, mock.Anything).Return("", time.Time{}, errors.New("boom"))

	_, err := NewService(users(t), signer).Login(context.Background(), domain.AdminLoginRequest{
		Email: "owner@shop.com", Password: "s3cret!",
	})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_Disabled(t *testing.T) {
	_, err := NewService(users(t), nil).Login(context.Background(), domain.AdminLoginRequest{
		Email: "owner@shop.com", Password: "s3cret!",
	})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
