package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account. Email and nickname are unique among live rows only,
// so a withdrawn account frees both for reuse.
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Email           string         `gorm:"size:255;not null;index:idx_users_email_live,unique,where:deleted_at IS NULL" json:"email"`
	PasswordHash    string         `gorm:"column:password_hash;not null" json:"-"`
	Nickname        string         `gorm:"size:10;not null;index:idx_users_nickname_live,unique,where:deleted_at IS NULL" json:"nickname"`
	ProfileImageID  *uint          `gorm:"index" json:"profile_image_id,omitempty"`
	ProfileImageURL string         `gorm:"size:512" json:"profile_image_url"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
