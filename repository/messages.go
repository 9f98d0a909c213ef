package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/movein/movein-api/models"
)

type gormMessages struct {
	db *gorm.DB
}

// conversationsSQL folds sent and received messages onto the same
// (counterpart, listing) key so each conversation appears exactly once.
const conversationsSQL = `
SELECT
	CASE WHEN sender_id = @user THEN receiver_id ELSE sender_id END AS counterpart_id,
	listing_id,
	COUNT(*) FILTER (WHERE receiver_id = @user AND "read" = false) AS unread_count,
	MAX(created_at) AS last_message_at
FROM messages
WHERE sender_id = @user OR receiver_id = @user
GROUP BY 1, listing_id
ORDER BY last_message_at DESC, counterpart_id ASC, listing_id ASC`

func (r *gormMessages) Create(ctx context.Context, m *models.Message) error {
	return translate("create message", r.db.WithContext(ctx).Omit(clause.Associations).Create(m).Error)
}

func (r *gormMessages) ByID(ctx context.Context, id uint) (*models.Message, error) {
	var m models.Message
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate("get message", err)
	}
	return &m, nil
}

func (r *gormMessages) Thread(ctx context.Context, a, b, listingID uint) ([]models.Message, error) {
	var out []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Preload("Receiver").
		Preload("Listing").
		Where("listing_id = ?", listingID).
		Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)", a, b, b, a).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, translate("get thread", err)
}

func (r *gormMessages) MarkThreadRead(ctx context.Context, receiverID, senderID, listingID uint) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where(map[string]any{
			"receiver_id": receiverID,
			"sender_id":   senderID,
			"listing_id":  listingID,
			"read":        false,
		}).
		Update("read", true)
	if res.Error != nil {
		return 0, translate("mark thread read", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *gormMessages) MarkRead(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("id = ?", id).
		Update("read", true)
	if res.Error != nil {
		return translate("mark message read", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *gormMessages) Conversations(ctx context.Context, userID uint) ([]models.ConversationRow, error) {
	var rows []models.ConversationRow
	err := r.db.WithContext(ctx).
		Raw(conversationsSQL, map[string]any{"user": userID}).
		Scan(&rows).Error
	return rows, translate("list conversations", err)
}

func (r *gormMessages) UnreadCount(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where(map[string]any{"receiver_id": userID, "read": false}).
		Count(&n).Error
	return n, translate("unread count", err)
}
