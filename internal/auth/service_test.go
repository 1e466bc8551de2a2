package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vovakirdan/chatsync/internal/store/sqlite"
)

func newTestAuthService(t *testing.T) *Service {
	t.Helper()

	st, err := sqlite.NewWithSetup(":memory:", sqlite.ApplySchema)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	jwtConfig := &JWTConfig{
		Secret:   []byte("test-secret-change-me"),
		Issuer:   "test",
		Audience: "test",
		TTL:      24 * time.Hour,
	}
	return NewService(st, jwtConfig, bcrypt.MinCost)
}

func TestSignupValidatesInput(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	_, _, err := svc.Signup(ctx, "   ", "a@example.com", "password123")
	require.ErrorIs(t, err, ErrInvalidName)

	_, _, err = svc.Signup(ctx, "Alice", "not-an-email", "password123")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, _, err = svc.Signup(ctx, "Alice", "a@example.com", "12345")
	require.ErrorIs(t, err, ErrInvalidPassword)
}

func TestSignupNormalizesEmailAndRejectsDuplicates(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, token, err := svc.Signup(ctx, " Alice ", " Alice@Example.com ", "password123")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, "Alice", user.FullName)
	require.Equal(t, "alice@example.com", user.Email)

	_, _, err = svc.Signup(ctx, "Other", "alice@example.com", "password123")
	require.ErrorIs(t, err, ErrUserExists)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
}

func TestLogin(t *testing.T) {
	svc := newTestAuthService(t)
	ctx := context.Background()

	user, _, err := svc.Signup(ctx, "Bob", "bob@example.com", "password123")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "bob@example.com", "wrong")
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	got, token, err := svc.Login(ctx, "BOB@example.com", "password123")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.NotEmpty(t, token)
}

func TestValidateTokenRejectsForeignTokens(t *testing.T) {
	cfg := &JWTConfig{Secret: []byte("one"), Issuer: "chatsync", TTL: time.Hour}
	token, err := GenerateToken(cfg, "u1")
	require.NoError(t, err)

	_, err = ValidateToken(&JWTConfig{Secret: []byte("two"), Issuer: "chatsync"}, token)
	require.Error(t, err)

	_, err = ValidateToken(&JWTConfig{Secret: []byte("one"), Issuer: "other"}, token)
	require.Error(t, err)

	_, err = ValidateToken(&JWTConfig{Secret: []byte("one"), Audience: "web"}, token)
	require.Error(t, err)

	expired, err := GenerateToken(&JWTConfig{Secret: []byte("one"), TTL: -time.Minute}, "u1")
	require.NoError(t, err)
	_, err = ValidateToken(cfg, expired)
	require.Error(t, err)
}
