package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movein/movein-api/apierrors"
)

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	u := seedUser(t, store, "alice")
	svc := NewUserService(store)

	got, err := svc.UpdateProfile(ctx, u.ID, ProfileInput{Phone: ptr(" +7 700 000 00 00 "), Avatar: ptr("https://cdn.example.com/a.png")})
	require.NoError(t, err)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "+7 700 000 00 00", *got.Phone)
	require.NotNil(t, got.Avatar)

	got, err = svc.UpdateProfile(ctx, u.ID, ProfileInput{Avatar: ptr("data:image/png;base64,iVBORw0KGgo=")})
	require.NoError(t, err)
	assert.NotNil(t, got.Phone, "phone untouched")

	got, err = svc.UpdateProfile(ctx, u.ID, ProfileInput{Phone: ptr("")})
	require.NoError(t, err)
	assert.Nil(t, got.Phone)

	_, err = svc.UpdateProfile(ctx, u.ID, ProfileInput{Avatar: ptr("javascript:alert(1)")})
	require.ErrorIs(t, err, apierrors.ErrValidation)

	me, err := svc.Me(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", *me.Avatar)
}

func TestUserService_MeNotFound(t *testing.T) {
	_, err := NewUserService(newStore()).Me(context.Background(), 404)
	require.ErrorIs(t, err, apierrors.ErrNotFound)
}
