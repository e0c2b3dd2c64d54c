package models

import (
	"time"

	"gorm.io/gorm"
)

// Meme is a tradable item on the exchange. TotalBid, UpVotes and DownVotes
// are denormalized aggregates kept current by the bid and vote services.
type Meme struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"size:255;not null" json:"title"`
	ImageURL  string         `gorm:"size:512" json:"imageUrl"`
	Caption   string         `gorm:"type:text" json:"caption,omitempty"`
	OwnerID   uint           `gorm:"index;not null" json:"ownerId"`
	Owner     *User          `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	TotalBid  float64        `gorm:"default:0" json:"totalBid"`
	UpVotes   int            `gorm:"default:0" json:"upVotes"`
	DownVotes int            `gorm:"default:0" json:"downVotes"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Score is the net vote count used for trending and leaderboard ranking.
func (m *Meme) Score() int {
	return m.UpVotes - m.DownVotes
}
