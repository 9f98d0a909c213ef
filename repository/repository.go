// Package repository is the persistence gateway: one store per entity,
// backed by gorm. Implementations translate driver-specific "no rows" errors
// into ErrNotFound and own no business rules.
package repository

import (
	"context"
	"errors"

	"github.com/movein/movein-api/models"
)

// ErrNotFound is returned when a lookup by key matches nothing.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique constraint rejects an insert.
var ErrDuplicate = errors.New("duplicate record")

type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User) error
	ByID(ctx context.Context, id uint) (*models.User, error)
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByUsername(ctx context.Context, username string) (*models.User, error)
	ByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	Summaries(ctx context.Context, ids []uint) ([]models.UserSummary, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type ListingStore interface {
	Create(ctx context.Context, l *models.Listing) error
	Update(ctx context.Context, l *models.Listing) error
	Delete(ctx context.Context, id uint) error
	ByID(ctx context.Context, id uint) (*models.Listing, error)
	List(ctx context.Context) ([]models.Listing, error)
	ByOwner(ctx context.Context, ownerID uint) ([]models.Listing, error)
	Search(ctx context.Context, f models.ListingFilter) ([]models.Listing, error)
	Summaries(ctx context.Context, ids []uint) ([]models.ListingSummary, error)
	Exists(ctx context.Context, id uint) (bool, error)
}

type FavoriteStore interface {
	// Add inserts the pair unless it already exists.
	Add(ctx context.Context, userID, listingID uint) error
	// Remove reports whether a row was deleted.
	Remove(ctx context.Context, userID, listingID uint) (bool, error)
	Listings(ctx context.Context, userID uint) ([]models.Listing, error)
}

type ReviewStore interface {
	Create(ctx context.Context, r *models.Review) error
	Update(ctx context.Context, r *models.Review) error
	Delete(ctx context.Context, id uint) error
	ByID(ctx context.Context, id uint) (*models.Review, error)
	ByListing(ctx context.Context, listingID uint) ([]models.Review, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *models.Message) error
	ByID(ctx context.Context, id uint) (*models.Message, error)
	// Thread returns messages about listingID exchanged between a and b in
	// either direction, oldest first, with summaries attached.
	Thread(ctx context.Context, a, b, listingID uint) ([]models.Message, error)
	// MarkThreadRead flips every unread message from sender to receiver about
	// listingID and returns how many rows changed.
	MarkThreadRead(ctx context.Context, receiverID, senderID, listingID uint) (int64, error)
	MarkRead(ctx context.Context, id uint) error
	// Conversations aggregates userID's messages per (counterpart, listing),
	// most recent first.
	Conversations(ctx context.Context, userID uint) ([]models.ConversationRow, error)
	UnreadCount(ctx context.Context, userID uint) (int64, error)
}

// Store bundles every entity store behind one handle.
type Store struct {
	Users     UserStore
	Listings  ListingStore
	Favorites FavoriteStore
	Reviews   ReviewStore
	Messages  MessageStore
	// Ping checks that the backing database is reachable.
	Ping func(ctx context.Context) error
}
