package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	FileTypeProfile = "profile"
	FileTypePost    = "post"
)

// File records an uploaded blob. PostID stays nil until a post references URL.
// ProfileSetAt is set while a profile file is its owner's chosen image.
type File struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	FileType     string         `gorm:"size:16;not null;index" json:"file_type"`
	UserID       *uint          `gorm:"index" json:"user_id"`
	PostID       *uint          `gorm:"index" json:"post_id"`
	URL          string         `gorm:"size:512;not null;uniqueIndex" json:"url"`
	OriginalName string         `gorm:"size:255" json:"original_name"`
	Size         int64          `json:"size"`
	ProfileSetAt *time.Time     `json:"profile_set_at"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
