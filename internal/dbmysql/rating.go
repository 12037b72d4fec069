package dbmysql

import (
	"time"
)

// Rating is one user's review of another, tied to a service interaction.
type Rating struct {
	RatingID    uint64    `gorm:"primaryKey;column:rating_id;autoIncrement" json:"rating_id"`
	FromUserID  string    `gorm:"column:from_user_id;size:64;index;not null" json:"from_user_id"`
	ToUserID    string    `gorm:"column:to_user_id;size:64;index;not null" json:"to_user_id"`
	Stars       int       `gorm:"column:stars;not null" json:"stars"`
	Review      string    `gorm:"column:review;type:text" json:"review"`
	IsThankYou  bool      `gorm:"column:is_thank_you;default:false" json:"is_thank_you"`
	ServiceType string    `gorm:"column:service_type;size:50" json:"service_type"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
