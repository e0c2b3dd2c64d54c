package models

import "time"

// Vote types.
const (
	VoteUp   = "up"
	VoteDown = "down"
)

// Vote is one user's up or down vote on a meme. The composite unique index
// enforces one vote per user per meme; re-voting updates Type in place.
type Vote struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	MemeID    uint      `gorm:"uniqueIndex:idx_meme_user;not null" json:"memeId"`
	UserID    uint      `gorm:"uniqueIndex:idx_meme_user;not null" json:"userId"`
	Type      string    `gorm:"size:8;not null" json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
