package dbmysql

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account. UserID is the stable string identifier that
// every other document (messages, previews, posts, ratings) refers to.
type User struct {
	UserID        string         `gorm:"primaryKey;column:user_id;size:64" json:"user_id"`
	DisplayName   string         `gorm:"column:display_name;size:50;not null" json:"display_name"`
	Email         string         `gorm:"column:email;uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  string         `gorm:"column:password_hash;size:255;not null" json:"-"`
	AverageRating float32        `gorm:"column:average_rating;default:0" json:"average_rating"`
	CreatedAt     time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
