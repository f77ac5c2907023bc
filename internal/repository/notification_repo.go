package repository

import (
	"context"
	"time"

	"edushare/internal/models"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *NotificationRepository) recipientScope(ctx context.Context, userID string, unreadOnly bool) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).Where("recipient_id = ?", userID)
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	return q
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]models.Notification, error) {
	var list []models.Notification
	err := r.recipientScope(ctx, userID, unreadOnly).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error
	return list, err
}

func (r *NotificationRepository) CountByRecipient(ctx context.Context, userID string, unreadOnly bool) (int64, error) {
	var n int64
	err := r.recipientScope(ctx, userID, unreadOnly).Count(&n).Error
	return n, err
}

// GetForRecipient returns the notification only when it belongs to userID.
func (r *NotificationRepository) GetForRecipient(ctx context.Context, id, userID string) (*models.Notification, error) {
	var n models.Notification
	err := r.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", id, userID).First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// MarkRead stamps readAt only on the unread-to-read transition.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ? AND is_read = ?", id, userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": at})
	return res.RowsAffected, res.Error
}

func (r *NotificationRepository) Delete(ctx context.Context, id, userID string) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ? AND recipient_id = ?", id, userID).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}

// DeleteReadBefore purges notifications that were read before cutoff.
func (r *NotificationRepository) DeleteReadBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("is_read = ? AND read_at < ?", true, cutoff).Delete(&models.Notification{})
	return res.RowsAffected, res.Error
}
