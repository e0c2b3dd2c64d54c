package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/srrathi/cyberplace-be/internal/models"
)

type MemeRepository struct {
	db *gorm.DB
}

func NewMemeRepository(db *gorm.DB) *MemeRepository {
	return &MemeRepository{db: db}
}

func (r *MemeRepository) Create(ctx context.Context, meme *models.Meme) error {
	return r.db.WithContext(ctx).Create(meme).Error
}

func (r *MemeRepository) FindByID(ctx context.Context, id uint) (*models.Meme, error) {
	var meme models.Meme
	if err := r.db.WithContext(ctx).Preload("Owner").First(&meme, id).Error; err != nil {
		return nil, err
	}
	return &meme, nil
}

func (r *MemeRepository) List(ctx context.Context, limit, offset int) ([]models.Meme, error) {
	var memes []models.Meme
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&memes).Error
	return memes, err
}

// LeaderboardEntry is one row of the standings: a meme ranked by net votes
// with total bids as the tiebreaker.
type LeaderboardEntry struct {
	MemeID    uint    `json:"memeId"`
	Title     string  `json:"title"`
	Username  string  `json:"username"`
	Score     int     `json:"score"`
	UpVotes   int     `json:"upVotes"`
	DownVotes int     `json:"downVotes"`
	TotalBid  float64 `json:"totalBid"`
}

func (r *MemeRepository) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var entries []LeaderboardEntry
	err := r.db.WithContext(ctx).
		Model(&models.Meme{}).
		Select("memes.id AS meme_id, memes.title, users.username, " +
			"memes.up_votes - memes.down_votes AS score, " +
			"memes.up_votes, memes.down_votes, memes.total_bid").
		Joins("JOIN users ON users.id = memes.owner_id").
		Where("memes.deleted_at IS NULL").
		Order("score DESC, memes.total_bid DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

// TopVotedSince returns the meme with the most votes cast inside the
// trailing window and that vote count. Returns (nil, 0, nil) when no votes
// landed in the window.
func (r *MemeRepository) TopVotedSince(ctx context.Context, since time.Time) (*models.Meme, int, error) {
	var row struct {
		MemeID uint
		Votes  int
	}
	err := r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("meme_id, COUNT(*) AS votes").
		Where("updated_at >= ?", since).
		Group("meme_id").
		Order("votes DESC").
		Limit(1).
		Scan(&row).Error
	if err != nil {
		return nil, 0, err
	}
	if row.MemeID == 0 {
		return nil, 0, nil
	}
	meme, err := r.FindByID(ctx, row.MemeID)
	if err != nil {
		return nil, 0, err
	}
	return meme, row.Votes, nil
}

// AddToTotalBid bumps the denormalized bid total and returns the new value.
func (r *MemeRepository) AddToTotalBid(ctx context.Context, memeID uint, amount float64) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Meme{}).Where("id = ?", memeID).
			UpdateColumn("total_bid", gorm.Expr("total_bid + ?", amount)).Error; err != nil {
			return err
		}
		return tx.Model(&models.Meme{}).Where("id = ?", memeID).
			Pluck("total_bid", &total).Error
	})
	return total, err
}

// SetVoteCounts overwrites the denormalized vote aggregates.
func (r *MemeRepository) SetVoteCounts(ctx context.Context, memeID uint, up, down int) error {
	return r.db.WithContext(ctx).Model(&models.Meme{}).Where("id = ?", memeID).
		UpdateColumns(map[string]interface{}{"up_votes": up, "down_votes": down}).Error
}
