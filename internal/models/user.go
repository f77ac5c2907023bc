package models

import (
	"time"

	"edushare/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the local view of the user directory. Accounts are owned by the auth collaborator.
type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Role      string    `gorm:"size:20;not null;index" json:"role"`
	FCMToken  string    `gorm:"size:512" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "users"
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

func (u *User) IsAdmin() bool { return u.Role == domain.RoleAdmin }
