// Package storetest holds behavioural tests every repository.Store
// implementation must pass.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

// Run executes the suite. newStore must return an empty store per call.
func Run(t *testing.T, newStore func(t *testing.T) *repository.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Listings", func(t *testing.T) { testListings(t, newStore(t)) })
	t.Run("ListingDeleteCascades", func(t *testing.T) { testListingDelete(t, newStore(t)) })
	t.Run("Favorites", func(t *testing.T) { testFavorites(t, newStore(t)) })
	t.Run("Reviews", func(t *testing.T) { testReviews(t, newStore(t)) })
	t.Run("Messages", func(t *testing.T) { testMessages(t, newStore(t)) })
	t.Run("Conversations", func(t *testing.T) { testConversations(t, newStore(t)) })
}

func user(t *testing.T, s *repository.Store, name string) *models.User {
	t.Helper()
	u := &models.User{Email: name + "@example.com", Username: name}
	require.NoError(t, s.Users.Create(context.Background(), u))
	require.NotZero(t, u.ID)
	return u
}

func listing(t *testing.T, s *repository.Store, ownerID uint, title string, price float64) *models.Listing {
	t.Helper()
	l := &models.Listing{
		Title: title, Price: price, Location: "Kyiv, Podil", OwnerID: ownerID,
		OperationType: models.OperationRent, PropertyType: models.PropertyApartment,
	}
	require.NoError(t, s.Listings.Create(context.Background(), l))
	return l
}

func message(t *testing.T, s *repository.Store, from, to, listingID uint, content string) *models.Message {
	t.Helper()
	m := &models.Message{SenderID: from, ReceiverID: to, ListingID: listingID, Content: content}
	require.NoError(t, s.Messages.Create(context.Background(), m))
	return m
}

func testUsers(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	gid := "google-1"
	u := &models.User{Email: "a@example.com", Username: "alice", GoogleID: &gid}
	require.NoError(t, s.Users.Create(ctx, u))

	got, err := s.Users.ByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = s.Users.ByGoogleID(ctx, gid)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = s.Users.ByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = s.Users.ByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	err = s.Users.Create(ctx, &models.User{Email: "a@example.com", Username: "other"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)
	err = s.Users.Create(ctx, &models.User{Email: "b@example.com", Username: "alice"})
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	phone := "+1"
	got.Phone = &phone
	require.NoError(t, s.Users.Update(ctx, got))
	got, err = s.Users.ByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "+1", *got.Phone)

	ok, err := s.Users.Exists(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	sums, err := s.Users.Summaries(ctx, []uint{u.ID, 999})
	require.NoError(t, err)
	require.Len(t, sums, 1)
	assert.Equal(t, "alice", sums[0].Username)
}

func testListings(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	owner := user(t, s, "owner")
	rooms := 2

	cheap := listing(t, s, owner.ID, "Cheap", 300)
	mid := &models.Listing{
		Title: "Mid", Price: 800, Location: "Lviv, Rynok Square", OwnerID: owner.ID,
		OperationType: models.OperationSale, PropertyType: models.PropertyHouse, Rooms: &rooms,
	}
	require.NoError(t, s.Listings.Create(ctx, mid))
	pricey := listing(t, s, owner.ID, "Pricey", 2000)

	all, err := s.Listings.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []uint{pricey.ID, mid.ID, cheap.ID}, ids(all), "newest first")
	require.NotNil(t, all[0].Owner)
	assert.Equal(t, "owner", all[0].Owner.Username)

	minP, maxP := 500.0, 1000.0
	found, err := s.Listings.Search(ctx, models.ListingFilter{MinPrice: &minP, MaxPrice: &maxP})
	require.NoError(t, err)
	assert.Equal(t, []uint{mid.ID}, ids(found))

	found, err = s.Listings.Search(ctx, models.ListingFilter{Location: "LVIV"})
	require.NoError(t, err)
	assert.Equal(t, []uint{mid.ID}, ids(found), "location match is case-insensitive")

	for _, pattern := range []string{"%", "_", `\`} {
		found, err = s.Listings.Search(ctx, models.ListingFilter{Location: pattern})
		require.NoError(t, err)
		assert.Empty(t, found, "%q is matched literally", pattern)
	}

	found, err = s.Listings.Search(ctx, models.ListingFilter{Rooms: &rooms, OperationType: models.OperationSale})
	require.NoError(t, err)
	assert.Equal(t, []uint{mid.ID}, ids(found))

	found, err = s.Listings.Search(ctx, models.ListingFilter{OperationType: models.OperationRent, PropertyType: models.PropertyHouse})
	require.NoError(t, err)
	assert.Empty(t, found)

	cheap.Price = 350
	require.NoError(t, s.Listings.Update(ctx, cheap))
	got, err := s.Listings.ByID(ctx, cheap.ID)
	require.NoError(t, err)
	assert.Equal(t, 350.0, got.Price)

	mine, err := s.Listings.ByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	_, err = s.Listings.ByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testListingDelete(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	a, b := user(t, s, "alice"), user(t, s, "bob")
	l := listing(t, s, b.ID, "Flat", 100)
	require.NoError(t, s.Favorites.Add(ctx, a.ID, l.ID))
	require.NoError(t, s.Reviews.Create(ctx, &models.Review{ListingID: l.ID, UserID: a.ID, Rating: 4, Comment: "Nice and sunny"}))
	message(t, s, a.ID, b.ID, l.ID, "hi")

	require.NoError(t, s.Listings.Delete(ctx, l.ID))
	assert.ErrorIs(t, s.Listings.Delete(ctx, l.ID), repository.ErrNotFound)

	favs, err := s.Favorites.Listings(ctx, a.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)
	reviews, err := s.Reviews.ByListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	n, err := s.Messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testFavorites(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	u := user(t, s, "alice")
	first := listing(t, s, u.ID, "First", 100)
	second := listing(t, s, u.ID, "Second", 200)

	require.NoError(t, s.Favorites.Add(ctx, u.ID, first.ID))
	require.NoError(t, s.Favorites.Add(ctx, u.ID, first.ID))
	require.NoError(t, s.Favorites.Add(ctx, u.ID, second.ID))

	favs, err := s.Favorites.Listings(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{second.ID, first.ID}, ids(favs))

	removed, err := s.Favorites.Remove(ctx, u.ID, first.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.Favorites.Remove(ctx, u.ID, first.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func testReviews(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	u := user(t, s, "alice")
	l := listing(t, s, u.ID, "Flat", 100)

	r := &models.Review{ListingID: l.ID, UserID: u.ID, Rating: 3, Comment: "Decent place"}
	require.NoError(t, s.Reviews.Create(ctx, r))
	r.Rating = 5
	require.NoError(t, s.Reviews.Update(ctx, r))

	got, err := s.Reviews.ByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Rating)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Username)

	list, err := s.Reviews.ByListing(ctx, l.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, s.Reviews.Delete(ctx, r.ID))
	assert.ErrorIs(t, s.Reviews.Delete(ctx, r.ID), repository.ErrNotFound)
	_, err = s.Reviews.ByID(ctx, r.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func testMessages(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	a, b, c := user(t, s, "alice"), user(t, s, "bob"), user(t, s, "carol")
	l := listing(t, s, b.ID, "Flat", 100)
	other := listing(t, s, b.ID, "Other", 100)

	m1 := message(t, s, a.ID, b.ID, l.ID, "one")
	m2 := message(t, s, b.ID, a.ID, l.ID, "two")
	m3 := message(t, s, a.ID, b.ID, l.ID, "three")
	message(t, s, a.ID, b.ID, other.ID, "elsewhere")
	message(t, s, c.ID, b.ID, l.ID, "from carol")

	thread, err := s.Messages.Thread(ctx, b.ID, a.ID, l.ID)
	require.NoError(t, err)
	require.Equal(t, []uint{m1.ID, m2.ID, m3.ID}, messageIDs(thread), "oldest first")
	require.NotNil(t, thread[0].Sender)
	assert.Equal(t, "alice", thread[0].Sender.Username)
	require.NotNil(t, thread[0].Listing)
	assert.Equal(t, "Flat", thread[0].Listing.Title)

	n, err := s.Messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	changed, err := s.Messages.MarkThreadRead(ctx, b.ID, a.ID, l.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), changed)
	changed, err = s.Messages.MarkThreadRead(ctx, b.ID, a.ID, l.ID)
	require.NoError(t, err)
	assert.Zero(t, changed)

	n, err = s.Messages.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	got, err := s.Messages.ByID(ctx, m2.ID)
	require.NoError(t, err)
	assert.False(t, got.Read, "messages sent by the reader are untouched")

	require.NoError(t, s.Messages.MarkRead(ctx, m2.ID))
	got, err = s.Messages.ByID(ctx, m2.ID)
	require.NoError(t, err)
	assert.True(t, got.Read)

	assert.ErrorIs(t, s.Messages.MarkRead(ctx, 999), repository.ErrNotFound)
}

func testConversations(t *testing.T, s *repository.Store) {
	ctx := context.Background()
	a, b, c := user(t, s, "alice"), user(t, s, "bob"), user(t, s, "carol")
	l1 := listing(t, s, a.ID, "One", 100)
	l2 := listing(t, s, a.ID, "Two", 100)

	message(t, s, b.ID, a.ID, l1.ID, "b about one")
	message(t, s, a.ID, b.ID, l1.ID, "reply")
	message(t, s, b.ID, a.ID, l2.ID, "b about two")
	message(t, s, c.ID, a.ID, l1.ID, "c about one")
	message(t, s, c.ID, a.ID, l1.ID, "c again")

	rows, err := s.Messages.Conversations(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, models.ConversationKey{CounterpartID: c.ID, ListingID: l1.ID}, key(rows[0]))
	assert.Equal(t, int64(2), rows[0].UnreadCount)
	assert.Equal(t, models.ConversationKey{CounterpartID: b.ID, ListingID: l2.ID}, key(rows[1]))
	assert.Equal(t, int64(1), rows[1].UnreadCount)
	assert.Equal(t, models.ConversationKey{CounterpartID: b.ID, ListingID: l1.ID}, key(rows[2]))
	assert.Equal(t, int64(1), rows[2].UnreadCount)
	assert.False(t, rows[0].LastMessageAt.Before(rows[1].LastMessageAt))

	rows, err = s.Messages.Conversations(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	unread := map[uint]int64{}
	for _, r := range rows {
		assert.Equal(t, a.ID, r.CounterpartID)
		unread[r.ListingID] = r.UnreadCount
	}
	assert.Equal(t, map[uint]int64{l1.ID: 1, l2.ID: 0}, unread)
}

func ids(ls []models.Listing) []uint {
	out := make([]uint, len(ls))
	for i, l := range ls {
		out[i] = l.ID
	}
	return out
}

func messageIDs(ms []models.Message) []uint {
	out := make([]uint, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func key(r models.ConversationRow) models.ConversationKey {
	return models.ConversationKey{CounterpartID: r.CounterpartID, ListingID: r.ListingID}
}
