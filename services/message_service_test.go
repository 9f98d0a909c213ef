package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/events"
)

func TestMessageService_SendCreatesUnreadMessage(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	listing := seedListing(t, store, bob.ID, "Flat", 100)
	pub := &fakePublisher{}
	svc := NewMessageService(store, pub)

	msg, err := svc.Send(ctx, alice.ID, bob.ID, listing.ID, "Is it still available?")
	require.NoError(t, err)
	assert.NotZero(t, msg.ID)
	assert.False(t, msg.Read)
	assert.Equal(t, alice.ID, msg.SenderID)

	require.Len(t, pub.keys, 1)
	assert.Equal(t, events.KeyMessageSent, pub.keys[0])
	assert.Equal(t, msg.ID, pub.msgs[0].(events.MessageSent).MessageID)
}

func TestMessageService_SendAcceptsEmptyContent(t *testing.T) {
	store := newStore()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	listing := seedListing(t, store, bob.ID, "Flat", 100)

	msg, err := NewMessageService(store, nil).Send(context.Background(), alice.ID, bob.ID, listing.ID, "")
	require.NoError(t, err)
	assert.Equal(t, "", msg.Content)
}

func TestMessageService_SendErrors(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	listing := seedListing(t, store, bob.ID, "Flat", 100)
	svc := NewMessageService(store, nil)

	tests := []struct {
		name       string
		receiverID uint
		listingID  uint
		want       error
		message    string
	}{
		{"missing listing", bob.ID, 999, apierrors.ErrNotFound, "Listing not found"},
		{"missing receiver", 999, listing.ID, apierrors.ErrNotFound, "Receiver not found"},
		{"self message", alice.ID, listing.ID, apierrors.ErrValidation, "Validation failed: You cannot send a message to yourself"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(ctx, alice.ID, tt.receiverID, tt.listingID, "hi")
			require.ErrorIs(t, err, tt.want)
			assert.Equal(t, tt.message, err.Error())
		})
	}

	count, err := svc.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestMessageService_SendIgnoresPublishFailure(t *testing.T) {
	store := newStore()
	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	listing := seedListing(t, store, bob.ID, "Flat", 100)
	pub := &fakePublisher{err: errors.New("broker down")}

	_, err := NewMessageService(store, pub).Send(context.Background(), alice.ID, bob.ID, listing.ID, "hi")
	require.NoError(t, err)
}

func TestMessageService_ThreadMarksIncomingAsRead(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	a := seedUser(t, store, "alice")
	b := seedUser(t, store, "bob")
	l := seedListing(t, store, b.ID, "Flat", 100)
	svc := NewMessageService(store, nil)

	_, err := svc.Send(ctx, a.ID, b.ID, l.ID, "hello")
	require.NoError(t, err)

	unread, err := svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	thread, err := svc.Thread(ctx, b.ID, a.ID, l.ID)
	require.NoError(t, err)
	require.Len(t, thread, 1)
	assert.False(t, thread[0].Read, "snapshot is taken before the update")
	require.NotNil(t, thread[0].Sender)
	assert.Equal(t, "alice", thread[0].Sender.Username)
	require.NotNil(t, thread[0].Listing)
	assert.Equal(t, "Flat", thread[0].Listing.Title)

	unread, err = svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestMessageService_ThreadLeavesOtherDirectionUnread(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	a := seedUser(t, store, "alice")
	b := seedUser(t, store, "bob")
	l := seedListing(t, store, b.ID, "Flat", 100)
	other := seedListing(t, store, b.ID, "House", 200)
	svc := NewMessageService(store, nil)

	_, err := svc.Send(ctx, a.ID, b.ID, l.ID, "from alice")
	require.NoError(t, err)
	_, err = svc.Send(ctx, b.ID, a.ID, l.ID, "from bob")
	require.NoError(t, err)
	_, err = svc.Send(ctx, a.ID, b.ID, other.ID, "other listing")
	require.NoError(t, err)

	thread, err := svc.Thread(ctx, b.ID, a.ID, l.ID)
	require.NoError(t, err)
	require.Len(t, thread, 2)
	assert.Equal(t, "from alice", thread[0].Content)
	assert.Equal(t, "from bob", thread[1].Content)

	unreadB, err := svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unreadB, "message about the other listing stays unread")

	unreadA, err := svc.UnreadCount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unreadA, "messages sent by the viewer are untouched")
}

func TestMessageService_ConversationsCollapseBothDirections(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	a := seedUser(t, store, "alice")
	b := seedUser(t, store, "bob")
	c := seedUser(t, store, "carol")
	flat := seedListing(t, store, b.ID, "Flat", 100)
	house := seedListing(t, store, c.ID, "House", 200)
	svc := NewMessageService(store, nil)

	// bob writes first, alice answers: one conversation from alice's side
	_, err := svc.Send(ctx, b.ID, a.ID, flat.ID, "hi alice")
	require.NoError(t, err)
	_, err = svc.Send(ctx, a.ID, b.ID, flat.ID, "hi bob")
	require.NoError(t, err)
	_, err = svc.Send(ctx, b.ID, a.ID, flat.ID, "still there?")
	require.NoError(t, err)
	_, err = svc.Send(ctx, a.ID, c.ID, house.ID, "about the house")
	require.NoError(t, err)

	convs, err := svc.Conversations(ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)

	assert.Equal(t, "carol", convs[0].User.Username, "most recent conversation first")
	assert.Equal(t, "House", convs[0].Listing.Title)
	assert.Zero(t, convs[0].UnreadCount)

	assert.Equal(t, "bob", convs[1].User.Username)
	assert.Equal(t, flat.ID, convs[1].Listing.ID)
	assert.Equal(t, int64(2), convs[1].UnreadCount)
}

func TestMessageService_ConversationsEmpty(t *testing.T) {
	store := newStore()
	a := seedUser(t, store, "alice")

	convs, err := NewMessageService(store, nil).Conversations(context.Background(), a.ID)
	require.NoError(t, err)
	assert.NotNil(t, convs)
	assert.Empty(t, convs)
}

func TestMessageService_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	store := newStore()
	a := seedUser(t, store, "alice")
	b := seedUser(t, store, "bob")
	l := seedListing(t, store, b.ID, "Flat", 100)
	svc := NewMessageService(store, nil)

	msg, err := svc.Send(ctx, a.ID, b.ID, l.ID, "hello")
	require.NoError(t, err)

	err = svc.MarkAsRead(ctx, b.ID, 999)
	require.ErrorIs(t, err, apierrors.ErrNotFound)

	err = svc.MarkAsRead(ctx, a.ID, msg.ID)
	require.ErrorIs(t, err, apierrors.ErrForbidden)

	require.NoError(t, svc.MarkAsRead(ctx, b.ID, msg.ID))
	require.NoError(t, svc.MarkAsRead(ctx, b.ID, msg.ID), "already read is fine")

	unread, err := svc.UnreadCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
