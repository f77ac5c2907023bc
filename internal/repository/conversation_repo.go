package repository

import (
	"context"
	"time"

	"edushare/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const notHiddenFor = "NOT EXISTS (SELECT 1 FROM conversation_hides h WHERE h.conversation_id = conversations.id AND h.user_id = ?)"

type ConversationRepository struct {
	db *gorm.DB
}

func NewConversationRepository(db *gorm.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

func (r *ConversationRepository) Create(ctx context.Context, c *models.Conversation) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*models.Conversation, error) {
	var c models.Conversation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepository) GetByPairKey(ctx context.Context, key string) (*models.Conversation, error) {
	var c models.Conversation
	err := r.db.WithContext(ctx).Where("pair_key = ?", key).First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListForUser returns the active conversations visible to userID, most recent activity first.
// Conversations without messages sort last.
func (r *ConversationRepository) ListForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	var list []models.Conversation
	err := r.db.WithContext(ctx).
		Where("(participant_a = ? OR participant_b = ?) AND active = ?", userID, userID, true).
		Where(notHiddenFor, userID).
		Order("CASE WHEN last_message_timestamp IS NULL THEN 1 ELSE 0 END").
		Order("last_message_timestamp DESC").
		Order("updated_at DESC").
		Find(&list).Error
	return list, err
}

// AppendMessage inserts m and moves the conversation's last-message summary to it in one transaction.
func (r *ConversationRepository) AppendMessage(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return err
		}
		res := tx.Model(&models.Conversation{}).Where("id = ?", m.ConversationID).Updates(map[string]interface{}{
			"last_message_content":   m.Content,
			"last_message_timestamp": m.CreatedAt,
			"last_message_sender_id": m.SenderID,
			"updated_at":             m.CreatedAt,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *ConversationRepository) CountMessages(ctx context.Context, conversationID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).Where("conversation_id = ?", conversationID).Count(&n).Error
	return n, err
}

// ListMessagesNewestFirst pages through the log from the tail.
func (r *ConversationRepository) ListMessagesNewestFirst(ctx context.Context, conversationID string, limit, offset int) ([]models.Message, error) {
	var list []models.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	return list, err
}

// MarkRead flips every unread message not sent by readerID. Already-read rows are untouched.
func (r *ConversationRepository) MarkRead(ctx context.Context, conversationID, readerID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND is_read = ?", conversationID, readerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

// Hide records that userID removed the conversation from their list. Repeats are no-ops.
func (r *ConversationRepository) Hide(ctx context.Context, conversationID, userID string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.ConversationHide{ConversationID: conversationID, UserID: userID}).Error
}

func (r *ConversationRepository) Deactivate(ctx context.Context, conversationID string) error {
	return r.db.WithContext(ctx).Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Update("active", false).Error
}

// CountUnreadForUser counts messages addressed to userID across the conversations visible to them.
func (r *ConversationRepository) CountUnreadForUser(ctx context.Context, userID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Message{}).
		Joins("JOIN conversations ON conversations.id = messages.conversation_id").
		Where("(conversations.participant_a = ? OR conversations.participant_b = ?) AND conversations.active = ?", userID, userID, true).
		Where(notHiddenFor, userID).
		Where("messages.sender_id <> ? AND messages.is_read = ?", userID, false).
		Count(&n).Error
	return n, err
}
