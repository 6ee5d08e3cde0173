package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a board member. Passwords are stored as bcrypt hashes only.
//
// DeletedID stays 0 while the account is active and takes the row id on soft
// delete, so the composite unique indexes only bind active accounts.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Email        string         `gorm:"size:255;not null;uniqueIndex:idx_users_email_live" json:"email"`
	Nickname     string         `gorm:"size:64;not null;uniqueIndex:idx_users_nickname_live" json:"nickname"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	DeletedID    uint           `gorm:"not null;default:0;uniqueIndex:idx_users_email_live;uniqueIndex:idx_users_nickname_live" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	ProfileImage *string        `gorm:"->;-:migration" json:"profile_image"`
}
