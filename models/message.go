package models

import "time"

// Message is immutable apart from Read, which only ever goes false -> true.
type Message struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	Content    string          `gorm:"type:text;not null;default:''" json:"content"`
	SenderID   uint            `gorm:"not null;index" json:"senderId"`
	ReceiverID uint            `gorm:"not null;index:idx_messages_inbox,priority:1" json:"receiverId"`
	ListingID  uint            `gorm:"not null;index" json:"listingId"`
	Read       bool            `gorm:"not null;default:false;index:idx_messages_inbox,priority:2" json:"read"`
	Sender     *UserSummary    `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Receiver   *UserSummary    `gorm:"foreignKey:ReceiverID" json:"receiver,omitempty"`
	Listing    *ListingSummary `gorm:"foreignKey:ListingID" json:"listing,omitempty"`
	CreatedAt  time.Time       `gorm:"index" json:"createdAt"`
}

// ConversationKey identifies a conversation from one participant's side.
type ConversationKey struct {
	CounterpartID uint
	ListingID     uint
}

// ConversationRow is the aggregate the store returns per conversation.
type ConversationRow struct {
	CounterpartID uint
	ListingID     uint
	UnreadCount   int64
	LastMessageAt time.Time
}

// Conversation is derived on demand and never stored.
type Conversation struct {
	User          *UserSummary    `json:"user"`
	Listing       *ListingSummary `json:"listing"`
	UnreadCount   int64           `json:"unreadCount"`
	LastMessageAt time.Time       `json:"lastMessageAt"`
}
