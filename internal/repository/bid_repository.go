package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/srrathi/cyberplace-be/internal/models"
)

type BidRepository struct {
	db *gorm.DB
}

func NewBidRepository(db *gorm.DB) *BidRepository {
	return &BidRepository{db: db}
}

func (r *BidRepository) Create(ctx context.Context, bid *models.Bid) error {
	return r.db.WithContext(ctx).Create(bid).Error
}

func (r *BidRepository) ListByMeme(ctx context.Context, memeID uint, limit int) ([]models.Bid, error) {
	var bids []models.Bid
	err := r.db.WithContext(ctx).
		Where("meme_id = ?", memeID).
		Order("created_at DESC").
		Limit(limit).
		Find(&bids).Error
	return bids, err
}

// HighestForMeme returns the current top bid, or nil when no bids exist.
func (r *BidRepository) HighestForMeme(ctx context.Context, memeID uint) (*models.Bid, error) {
	var bid models.Bid
	err := r.db.WithContext(ctx).
		Where("meme_id = ?", memeID).
		Order("amount DESC").
		First(&bid).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &bid, nil
}
