package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a board post created by a user.
//
// LikeCount, CommentCount and FileURL are never stored; they are filled by the
// counter subqueries when a post is read.
type Post struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	UserID       uint           `gorm:"index;not null" json:"user_id"`
	Title        string         `gorm:"size:255;not null" json:"title"`
	Content      string         `gorm:"type:text;not null" json:"content"`
	ViewCount    int64          `gorm:"not null;default:0" json:"view_count"`
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	User         User           `gorm:"foreignKey:UserID" json:"author"`
	LikeCount    int64          `gorm:"->;-:migration" json:"like_count"`
	CommentCount int64          `gorm:"->;-:migration" json:"comment_count"`
	FileURL      *string        `gorm:"->;-:migration" json:"file_url"`
}
