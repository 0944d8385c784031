package models

import (
	"time"

	"gorm.io/gorm"
)

// Upload folders accepted by the media endpoint.
const (
	ImageFolderProfile = "profile"
	ImageFolderPost    = "post"
)

// Image is an uploaded media object. UploaderID is nil for uploads made
// before signup.
type Image struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	FileKey     string         `gorm:"size:255;not null;uniqueIndex" json:"file_key"`
	FileURL     string         `gorm:"size:512;not null" json:"file_url"`
	ContentType string         `gorm:"size:64;not null" json:"content_type"`
	Size        int64          `gorm:"not null" json:"size"`
	UploaderID  *uint          `gorm:"index" json:"uploader_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// OwnedBy reports whether userID uploaded the image.
func (i *Image) OwnedBy(userID uint) bool {
	return i.UploaderID != nil && *i.UploaderID == userID
}
