package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Resource is the catalog entry feedback is attached to. The catalog itself is managed elsewhere.
type Resource struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	OwnerID       string    `gorm:"size:36;not null;index" json:"ownerId"`
	Title         string    `gorm:"size:255;not null" json:"title"`
	RatingAverage float64   `gorm:"not null;default:0" json:"ratingAverage"`
	RatingCount   int       `gorm:"not null;default:0" json:"ratingCount"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Resource) TableName() string {
	return "resources"
}

func (r *Resource) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ResourceFeedback is one rating per (resource, user); a second submission replaces the first.
type ResourceFeedback struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ResourceID string    `gorm:"size:36;not null;uniqueIndex:idx_feedback_resource_user,priority:1" json:"resourceId"`
	UserID     string    `gorm:"size:36;not null;uniqueIndex:idx_feedback_resource_user,priority:2" json:"userId"`
	Rating     int       `gorm:"not null" json:"rating"`
	Comment    string    `gorm:"size:1000" json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (ResourceFeedback) TableName() string {
	return "resource_feedback"
}
