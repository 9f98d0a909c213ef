package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movein/movein-api/config"
	"github.com/movein/movein-api/models"
)

type fakeGoogle struct {
	profile *GoogleProfile
	err     error
}

func (f *fakeGoogle) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (f *fakeGoogle) Profile(context.Context, string) (*GoogleProfile, error) {
	return f.profile, f.err
}

func TestNewGoogleAuth_DisabledWithoutCredentials(t *testing.T) {
	tokens := NewTokenIssuer("s", time.Minute, time.Hour)
	assert.Nil(t, NewGoogleAuth(config.GoogleConfig{}, newStore(), tokens))

	g := NewGoogleAuth(config.GoogleConfig{ClientID: "id", ClientSecret: "secret", CallbackURL: "http://localhost/cb"}, newStore(), tokens)
	require.NotNil(t, g)
	assert.Contains(t, g.AuthURL("xyz"), "state=xyz")
}

func TestGoogleAuth_CreatesUser(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	seedUser(t, store, "jane")
	tokens := NewTokenIssuer("s", time.Minute, time.Hour)
	g := NewGoogleAuthWithProvider(&fakeGoogle{profile: &GoogleProfile{
		ID: "g-1", Email: "Jane@gmail.com", Picture: "https://img.example.com/jane.png",
	}}, store, tokens)

	res, err := g.Callback(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, "jane@gmail.com", res.User.Email)
	assert.Equal(t, "jane1", res.User.Username, "taken usernames get a suffix")
	assert.False(t, res.User.HasPassword())
	require.NotNil(t, res.User.Avatar)

	id, err := tokens.Verify(res.Tokens.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, id)

	again, err := g.Callback(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID, "second login finds the same account")
}

func TestGoogleAuth_LinksExistingEmail(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	existing := &models.User{Email: "bob@example.com", Username: "bob", Password: ptr("hash")}
	require.NoError(t, store.Users.Create(ctx, existing))

	g := NewGoogleAuthWithProvider(&fakeGoogle{profile: &GoogleProfile{ID: "g-2", Email: "bob@example.com"}},
		store, NewTokenIssuer("s", time.Minute, time.Hour))

	res, err := g.Callback(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, res.User.ID)

	linked, err := store.Users.ByGoogleID(ctx, "g-2")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, linked.ID)
	assert.True(t, linked.HasPassword())
}

func TestGoogleAuth_ProviderError(t *testing.T) {
	g := NewGoogleAuthWithProvider(&fakeGoogle{err: errors.New("exchange failed")},
		newStore(), NewTokenIssuer("s", time.Minute, time.Hour))

	_, err := g.Callback(context.Background(), "code")
	require.Error(t, err)
}
