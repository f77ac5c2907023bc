package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Notification struct {
	ID          string               `gorm:"primaryKey;size:36" json:"id"`
	RecipientID string               `gorm:"size:36;not null;index:idx_notifications_recipient_read,priority:1" json:"recipient"`
	SenderID    *string              `gorm:"size:36" json:"sender,omitempty"`
	Kind        string               `gorm:"size:32;not null" json:"kind"`
	Title       string               `gorm:"size:200;not null" json:"title"`
	Body        string               `gorm:"size:500;not null" json:"body"`
	Link        string               `gorm:"size:512" json:"link,omitempty"`
	Read        bool                 `gorm:"column:is_read;not null;default:false;index:idx_notifications_recipient_read,priority:2" json:"read"`
	ReadAt      *time.Time           `json:"readAt"`
	Metadata    NotificationMetadata `gorm:"embedded;embeddedPrefix:metadata_" json:"metadata"`
	CreatedAt   time.Time            `gorm:"index" json:"createdAt"`
}

// NotificationMetadata carries correlation ids back to the causing entity.
type NotificationMetadata struct {
	ResourceID string `gorm:"size:36" json:"resourceId,omitempty"`
	PaymentID  string `gorm:"size:36" json:"paymentId,omitempty"`
	ChatID     string `gorm:"size:36" json:"chatId,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(*gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
