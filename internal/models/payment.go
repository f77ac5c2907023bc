package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Payment is created by the checkout collaborator; this core only moves it to a terminal state.
type Payment struct {
	ID                string     `gorm:"primaryKey;size:36" json:"id"`
	UserID            string     `gorm:"size:36;not null;index" json:"userId"`
	ResourceID        string     `gorm:"size:36;index" json:"resourceId"`
	ResourceTitle     string     `gorm:"size:255" json:"resourceTitle"`
	AmountCents       int64      `gorm:"not null" json:"amountCents"`
	Currency          string     `gorm:"size:3;default:'usd'" json:"currency"`
	Status            string     `gorm:"size:20;not null;index" json:"status"` // PENDING, COMPLETED, FAILED
	ProviderSessionID string     `gorm:"size:255;index" json:"-"`
	ProviderIntentID  string     `gorm:"size:255;index" json:"-"`
	FailureReason     string     `gorm:"size:512" json:"failureReason,omitempty"`
	CompletedAt       *time.Time `json:"completedAt"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

func (Payment) TableName() string {
	return "payments"
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
