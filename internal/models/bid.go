package models

import "time"

// Bid is a single credit commitment by a user on a meme.
type Bid struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemeID    uint      `gorm:"index;not null" json:"memeId"`
	UserID    uint      `gorm:"index;not null" json:"userId"`
	Amount    float64   `gorm:"not null" json:"amount"`
	CreatedAt time.Time `json:"createdAt"`
}
