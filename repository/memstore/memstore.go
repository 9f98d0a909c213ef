// Package memstore is an in-process implementation of the repository
// interfaces. It backs DB_DRIVER=memory and the service and route tests.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

type db struct {
	mu  sync.RWMutex
	now func() time.Time

	seq       map[string]uint
	users     map[uint]models.User
	listings  map[uint]models.Listing
	reviews   map[uint]models.Review
	messages  map[uint]models.Message
	favorites map[favKey]models.Favorite
}

type favKey struct{ user, listing uint }

// New returns a Store backed by maps guarded by a single RWMutex.
func New() *repository.Store {
	return NewWithClock(func() time.Time { return time.Now().UTC() })
}

// NewWithClock is New with an injectable time source.
func NewWithClock(now func() time.Time) *repository.Store {
	d := &db{
		now:       now,
		seq:       map[string]uint{},
		users:     map[uint]models.User{},
		listings:  map[uint]models.Listing{},
		reviews:   map[uint]models.Review{},
		messages:  map[uint]models.Message{},
		favorites: map[favKey]models.Favorite{},
	}
	return &repository.Store{
		Users:     &users{d},
		Listings:  &listings{d},
		Favorites: &favorites{d},
		Reviews:   &reviews{d},
		Messages:  &messages{d},
		Ping:      func(context.Context) error { return nil },
	}
}

func (d *db) next(table string) uint {
	d.seq[table]++
	return d.seq[table]
}

// userSummary and listingSummary must be called with d.mu held.
func (d *db) userSummary(id uint) *models.UserSummary {
	u, ok := d.users[id]
	if !ok {
		return nil
	}
	s := u.Summary()
	return &s
}

func (d *db) listingSummary(id uint) *models.ListingSummary {
	l, ok := d.listings[id]
	if !ok {
		return nil
	}
	return &models.ListingSummary{ID: l.ID, Title: l.Title}
}

func (d *db) withOwner(l models.Listing) models.Listing {
	l.Owner = d.userSummary(l.OwnerID)
	return l
}

func newestListingsFirst(out []models.Listing) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
}

// users

type users struct{ *db }

func (s *users) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(u); err != nil {
		return err
	}
	u.ID = s.next("users")
	now := s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	s.users[u.ID] = *u
	return nil
}

func (s *users) Update(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	if err := s.checkUnique(u); err != nil {
		return err
	}
	u.UpdatedAt = s.now()
	s.users[u.ID] = *u
	return nil
}

func (s *users) checkUnique(u *models.User) error {
	for _, other := range s.users {
		if other.ID == u.ID {
			continue
		}
		if other.Email == u.Email || other.Username == u.Username ||
			(u.GoogleID != nil && other.GoogleID != nil && *u.GoogleID == *other.GoogleID) {
			return fmt.Errorf("user: %w", repository.ErrDuplicate)
		}
	}
	return nil
}

func (s *users) ByID(_ context.Context, id uint) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (s *users) find(match func(models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *users) ByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Email == email })
}

func (s *users) ByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.Username == username })
}

func (s *users) ByGoogleID(_ context.Context, googleID string) (*models.User, error) {
	return s.find(func(u models.User) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (s *users) Summaries(_ context.Context, ids []uint) ([]models.UserSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.UserSummary
	for _, id := range ids {
		if sum := s.userSummary(id); sum != nil {
			out = append(out, *sum)
		}
	}
	return out, nil
}

func (s *users) Exists(_ context.Context, id uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[id]
	return ok, nil
}

// listings

type listings struct{ *db }

func (s *listings) Create(_ context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = s.next("listings")
	now := s.now()
	l.CreatedAt, l.UpdatedAt = now, now
	stored := *l
	stored.Owner = nil
	s.listings[l.ID] = stored
	return nil
}

func (s *listings) Update(_ context.Context, l *models.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[l.ID]; !ok {
		return repository.ErrNotFound
	}
	l.UpdatedAt = s.now()
	stored := *l
	stored.Owner = nil
	s.listings[l.ID] = stored
	return nil
}

func (s *listings) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.listings[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.listings, id)
	for k := range s.favorites {
		if k.listing == id {
			delete(s.favorites, k)
		}
	}
	for rid, r := range s.reviews {
		if r.ListingID == id {
			delete(s.reviews, rid)
		}
	}
	for mid, m := range s.messages {
		if m.ListingID == id {
			delete(s.messages, mid)
		}
	}
	return nil
}

func (s *listings) ByID(_ context.Context, id uint) (*models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.listings[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	l = s.withOwner(l)
	return &l, nil
}

func (s *listings) List(ctx context.Context) ([]models.Listing, error) {
	return s.Search(ctx, models.ListingFilter{})
}

func (s *listings) ByOwner(_ context.Context, ownerID uint) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Listing
	for _, l := range s.listings {
		if l.OwnerID == ownerID {
			out = append(out, s.withOwner(l))
		}
	}
	newestListingsFirst(out)
	return out, nil
}

func (s *listings) Search(_ context.Context, f models.ListingFilter) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Listing
	for _, l := range s.listings {
		if matches(l, f) {
			out = append(out, s.withOwner(l))
		}
	}
	newestListingsFirst(out)
	return out, nil
}

func matches(l models.Listing, f models.ListingFilter) bool {
	switch {
	case f.OperationType != "" && l.OperationType != f.OperationType:
		return false
	case f.PropertyType != "" && l.PropertyType != f.PropertyType:
		return false
	case f.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(f.Location)):
		return false
	case f.MinPrice != nil && l.Price < *f.MinPrice:
		return false
	case f.MaxPrice != nil && l.Price > *f.MaxPrice:
		return false
	case f.Rooms != nil && (l.Rooms == nil || *l.Rooms != *f.Rooms):
		return false
	case f.Floors != nil && (l.Floors == nil || *l.Floors != *f.Floors):
		return false
	}
	return true
}

func (s *listings) Summaries(_ context.Context, ids []uint) ([]models.ListingSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ListingSummary
	for _, id := range ids {
		if sum := s.listingSummary(id); sum != nil {
			out = append(out, *sum)
		}
	}
	return out, nil
}

func (s *listings) Exists(_ context.Context, id uint) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.listings[id]
	return ok, nil
}

// favorites

type favorites struct{ *db }

func (s *favorites) Add(_ context.Context, userID, listingID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := favKey{userID, listingID}
	if _, ok := s.favorites[k]; ok {
		return nil
	}
	s.favorites[k] = models.Favorite{UserID: userID, ListingID: listingID, CreatedAt: s.now()}
	return nil
}

func (s *favorites) Remove(_ context.Context, userID, listingID uint) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := favKey{userID, listingID}
	if _, ok := s.favorites[k]; !ok {
		return false, nil
	}
	delete(s.favorites, k)
	return true, nil
}

func (s *favorites) Listings(_ context.Context, userID uint) ([]models.Listing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var favs []models.Favorite
	for k, f := range s.favorites {
		if k.user == userID {
			favs = append(favs, f)
		}
	}
	sort.Slice(favs, func(i, j int) bool {
		if !favs[i].CreatedAt.Equal(favs[j].CreatedAt) {
			return favs[i].CreatedAt.After(favs[j].CreatedAt)
		}
		return favs[i].ListingID > favs[j].ListingID
	})
	out := make([]models.Listing, 0, len(favs))
	for _, f := range favs {
		if l, ok := s.listings[f.ListingID]; ok {
			out = append(out, s.withOwner(l))
		}
	}
	return out, nil
}

// reviews

type reviews struct{ *db }

func (s *reviews) Create(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.next("reviews")
	now := s.now()
	r.CreatedAt, r.UpdatedAt = now, now
	stored := *r
	stored.User = nil
	s.reviews[r.ID] = stored
	return nil
}

func (s *reviews) Update(_ context.Context, r *models.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[r.ID]; !ok {
		return repository.ErrNotFound
	}
	r.UpdatedAt = s.now()
	stored := *r
	stored.User = nil
	s.reviews[r.ID] = stored
	return nil
}

func (s *reviews) Delete(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.reviews[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.reviews, id)
	return nil
}

func (s *reviews) ByID(_ context.Context, id uint) (*models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reviews[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	r.User = s.userSummary(r.UserID)
	return &r, nil
}

func (s *reviews) ByListing(_ context.Context, listingID uint) ([]models.Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Review
	for _, r := range s.reviews {
		if r.ListingID == listingID {
			r.User = s.userSummary(r.UserID)
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// messages

type messages struct{ *db }

func (s *messages) Create(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.next("messages")
	m.CreatedAt = s.now()
	stored := *m
	stored.Sender, stored.Receiver, stored.Listing = nil, nil, nil
	s.messages[m.ID] = stored
	return nil
}

func (s *messages) ByID(_ context.Context, id uint) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &m, nil
}

func (s *messages) Thread(_ context.Context, a, b, listingID uint) ([]models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.Message
	for _, m := range s.messages {
		if m.ListingID != listingID {
			continue
		}
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			m.Sender = s.userSummary(m.SenderID)
			m.Receiver = s.userSummary(m.ReceiverID)
			m.Listing = s.listingSummary(m.ListingID)
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *messages) MarkThreadRead(_ context.Context, receiverID, senderID, listingID uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for id, m := range s.messages {
		if m.ReceiverID == receiverID && m.SenderID == senderID && m.ListingID == listingID && !m.Read {
			m.Read = true
			s.messages[id] = m
			n++
		}
	}
	return n, nil
}

func (s *messages) MarkRead(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Read = true
	s.messages[id] = m
	return nil
}

func (s *messages) Conversations(_ context.Context, userID uint) ([]models.ConversationRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := map[models.ConversationKey]*models.ConversationRow{}
	for _, m := range s.messages {
		var key models.ConversationKey
		switch userID {
		case m.SenderID:
			key = models.ConversationKey{CounterpartID: m.ReceiverID, ListingID: m.ListingID}
		case m.ReceiverID:
			key = models.ConversationKey{CounterpartID: m.SenderID, ListingID: m.ListingID}
		default:
			continue
		}
		row, ok := rows[key]
		if !ok {
			row = &models.ConversationRow{CounterpartID: key.CounterpartID, ListingID: key.ListingID}
			rows[key] = row
		}
		if m.ReceiverID == userID && !m.Read {
			row.UnreadCount++
		}
		if m.CreatedAt.After(row.LastMessageAt) {
			row.LastMessageAt = m.CreatedAt
		}
	}

	out := make([]models.ConversationRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.LastMessageAt.Equal(b.LastMessageAt) {
			return a.LastMessageAt.After(b.LastMessageAt)
		}
		if a.CounterpartID != b.CounterpartID {
			return a.CounterpartID < b.CounterpartID
		}
		return a.ListingID < b.ListingID
	})
	return out, nil
}

func (s *messages) UnreadCount(_ context.Context, userID uint) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, m := range s.messages {
		if m.ReceiverID == userID && !m.Read {
			n++
		}
	}
	return n, nil
}
