// Package events publishes domain events to a message broker.
package events

import (
	"context"
	"time"
)

// Routing keys.
const (
	KeyMessageSent = "message.sent"
)

// Publisher sends a JSON-encoded payload under a routing key.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

// MessageSent is emitted after a message is stored.
type MessageSent struct {
	MessageID  uint      `json:"messageId"`
	SenderID   uint      `json:"senderId"`
	ReceiverID uint      `json:"receiverId"`
	ListingID  uint      `json:"listingId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Noop discards everything. It is used when no broker is configured.
type Noop struct{}

func (Noop) PublishJSON(context.Context, string, any) error { return nil }
func (Noop) Close() error                                   { return nil }
