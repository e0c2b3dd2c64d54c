package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an account holder. Username doubles as the presence identity on
// the realtime layer.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email     string         `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string         `gorm:"size:255;not null" json:"-"`
	Avatar    string         `gorm:"size:512" json:"avatar,omitempty"`
	Credits   float64        `gorm:"default:1000" json:"credits"`
	LastLogin time.Time      `json:"lastLogin"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
