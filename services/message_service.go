package services

import (
	"context"
	"log/slog"

	"github.com/movein/movein-api/apierrors"
	"github.com/movein/movein-api/events"
	"github.com/movein/movein-api/models"
	"github.com/movein/movein-api/repository"
)

// MessageService groups messages into conversations and manages read state.
type MessageService struct {
	messages  repository.MessageStore
	users     repository.UserStore
	listings  repository.ListingStore
	publisher events.Publisher
}

func NewMessageService(store *repository.Store, publisher events.Publisher) *MessageService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &MessageService{
		messages:  store.Messages,
		users:     store.Users,
		listings:  store.Listings,
		publisher: publisher,
	}
}

// Send stores a new unread message. Empty content is allowed.
func (s *MessageService) Send(ctx context.Context, senderID, receiverID, listingID uint, content string) (*models.Message, error) {
	ok, err := s.listings.Exists(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierrors.NotFound("Listing not found")
	}

	ok, err = s.users.Exists(ctx, receiverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apierrors.NotFound("Receiver not found")
	}

	if senderID == receiverID {
		return nil, apierrors.Field("receiverId", "You cannot send a message to yourself")
	}

	msg := &models.Message{
		Content:    content,
		SenderID:   senderID,
		ReceiverID: receiverID,
		ListingID:  listingID,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	messagesSentTotal.Inc()

	event := events.MessageSent{
		MessageID:  msg.ID,
		SenderID:   msg.SenderID,
		ReceiverID: msg.ReceiverID,
		ListingID:  msg.ListingID,
		CreatedAt:  msg.CreatedAt,
	}
	if err := s.publisher.PublishJSON(ctx, events.KeyMessageSent, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event",
			slog.String("key", events.KeyMessageSent),
			slog.Uint64("message_id", uint64(msg.ID)),
			slog.Any("error", err),
		)
	}
	return msg, nil
}

// Conversations lists one entry per (counterpart, listing) the user has
// exchanged messages about, most recent first.
func (s *MessageService) Conversations(ctx context.Context, userID uint) ([]models.Conversation, error) {
	rows, err := s.messages.Conversations(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.Conversation{}, nil
	}

	userIDs := make([]uint, 0, len(rows))
	listingIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		userIDs = append(userIDs, r.CounterpartID)
		listingIDs = append(listingIDs, r.ListingID)
	}

	users, err := s.users.Summaries(ctx, dedupe(userIDs))
	if err != nil {
		return nil, err
	}
	listings, err := s.listings.Summaries(ctx, dedupe(listingIDs))
	if err != nil {
		return nil, err
	}

	userByID := make(map[uint]models.UserSummary, len(users))
	for _, u := range users {
		userByID[u.ID] = u
	}
	listingByID := make(map[uint]models.ListingSummary, len(listings))
	for _, l := range listings {
		listingByID[l.ID] = l
	}

	out := make([]models.Conversation, 0, len(rows))
	for _, r := range rows {
		conv := models.Conversation{
			UnreadCount:   r.UnreadCount,
			LastMessageAt: r.LastMessageAt,
		}
		if u, ok := userByID[r.CounterpartID]; ok {
			conv.User = &u
		}
		if l, ok := listingByID[r.ListingID]; ok {
			conv.Listing = &l
		}
		out = append(out, conv)
	}
	return out, nil
}

// Thread returns the messages between userID and otherUserID about
// listingID, oldest first, then marks the ones addressed to userID as read.
// The returned messages reflect the state before that update.
func (s *MessageService) Thread(ctx context.Context, userID, otherUserID, listingID uint) ([]models.Message, error) {
	msgs, err := s.messages.Thread(ctx, userID, otherUserID, listingID)
	if err != nil {
		return nil, err
	}

	n, err := s.messages.MarkThreadRead(ctx, userID, otherUserID, listingID)
	if err != nil {
		return nil, err
	}
	messagesReadTotal.Add(float64(n))

	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs, nil
}

// MarkAsRead flips a single message to read. Only its receiver may do so.
func (s *MessageService) MarkAsRead(ctx context.Context, userID, messageID uint) error {
	msg, err := s.messages.ByID(ctx, messageID)
	if err != nil {
		return notFound(err, "Message not found")
	}
	if msg.ReceiverID != userID {
		return apierrors.Forbidden("Access denied")
	}
	if msg.Read {
		return nil
	}
	if err := s.messages.MarkRead(ctx, messageID); err != nil {
		return notFound(err, "Message not found")
	}
	messagesReadTotal.Inc()
	return nil
}

func (s *MessageService) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	return s.messages.UnreadCount(ctx, userID)
}

func dedupe(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
