// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxPostImages is the number of images a post may carry.
const MaxPostImages = 5

// Post represents a board post. Counters are denormalized and only change
// through single-statement updates in the same transaction as their source row.
type Post struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"not null;index" json:"user_id"`
	User         User           `gorm:"foreignKey:UserID" json:"-"`
	Title        string         `gorm:"size:26;not null" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	ViewCount    int64          `gorm:"not null;default:0" json:"view_count"`
	LikeCount    int64          `gorm:"not null;default:0" json:"like_count"`
	CommentCount int64          `gorm:"not null;default:0" json:"comment_count"`
	Images       []PostImage    `gorm:"foreignKey:PostID" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// PostImage attaches an uploaded image to a post. Its ID is exposed as fileId.
type PostImage struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	PostID    uint           `gorm:"not null;index" json:"post_id"`
	ImageID   uint           `gorm:"not null;index" json:"image_id"`
	FileURL   string         `gorm:"size:512;not null" json:"file_url"`
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
