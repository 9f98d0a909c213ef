package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
	"github.com/movein/movein-api/repository/memstore"
)

// tickingClock advances one second per call so ordering by time is stable.
func tickingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newStore() *repository.Store {
	return memstore.NewWithClock(tickingClock())
}

func seedUser(t *testing.T, store *repository.Store, username string) *models.User {
	t.Helper()
	u := &models.User{Email: username + "@example.com", Username: username}
	require.NoError(t, store.Users.Create(context.Background(), u))
	return u
}

func seedListing(t *testing.T, store *repository.Store, ownerID uint, title string, price float64) *models.Listing {
	t.Helper()
	l := &models.Listing{
		Title:         title,
		Price:         price,
		Location:      "Almaty, Abay Ave",
		OwnerID:       ownerID,
		OperationType: models.OperationSale,
		PropertyType:  models.PropertyApartment,
	}
	require.NoError(t, store.Listings.Create(context.Background(), l))
	return l
}

type fakePublisher struct {
	mu   sync.Mutex
	keys []string
	msgs []any
	err  error
}

func (p *fakePublisher) PublishJSON(_ context.Context, key string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	p.msgs = append(p.msgs, v)
	return p.err
}

func (p *fakePublisher) Close() error { return nil }

func ptr[T any](v T) *T { return &v }
