package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

func newTestAuth(store *repository.Store) (*AuthService, *TokenIssuer) {
	tokens := NewTokenIssuer("test-secret", 15*time.Minute, time.Hour)
	svc := NewAuthService(store, tokens)
	svc.cost = bcrypt.MinCost
	return svc, tokens
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newTestAuth(newStore())

	res, err := svc.Register(ctx, RegisterInput{Email: " Alice@Example.com ", Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	require.NotNil(t, res.User.Password)
	assert.NotEqual(t, "secret1", *res.User.Password)

	userID, err := tokens.Verify(res.Tokens.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, userID)

	login, err := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestAuthService_RegisterConflicts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestAuth(newStore())

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "a@example.com", Username: "other", Password: "secret1"})
	require.ErrorIs(t, err, apierrors.ErrConflict)
	assert.Equal(t, "User already exists with this email", err.Error())

	_, err = svc.Register(ctx, RegisterInput{Email: "b@example.com", Username: "alice", Password: "secret1"})
	require.ErrorIs(t, err, apierrors.ErrConflict)
	assert.Equal(t, "Username already taken", err.Error())
}

func TestAuthService_LoginFailures(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	svc, _ := newTestAuth(store)

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Username: "alice", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, store.Users.Create(ctx, &models.User{Email: "g@example.com", Username: "googler", GoogleID: ptr("g-1")}))

	for _, in := range []LoginInput{
		{Email: "nobody@example.com", Password: "secret1"},
		{Email: "a@example.com", Password: "wrong-password"},
		{Email: "g@example.com", Password: "anything"},
	} {
		_, err := svc.Login(ctx, in)
		require.ErrorIs(t, err, apierrors.ErrUnauthorized, in.Email)
		assert.Equal(t, "Invalid credentials", err.Error())
	}
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()
	svc, tokens := newTestAuth(newStore())

	res, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, res.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, refreshed.User.ID)

	_, err = svc.Refresh(ctx, res.Tokens.AccessToken)
	require.ErrorIs(t, err, apierrors.ErrUnauthorized, "access tokens cannot refresh")

	orphan, err := tokens.Issue(999)
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, orphan.RefreshToken)
	require.ErrorIs(t, err, apierrors.ErrUnauthorized)
}
