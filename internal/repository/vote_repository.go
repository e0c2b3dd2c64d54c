package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/srrathi/cyberplace-be/internal/models"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// Upsert records the user's vote, replacing any prior vote on the same meme.
func (r *VoteRepository) Upsert(ctx context.Context, vote *models.Vote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meme_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).
		Create(vote).Error
}

// Counts returns the up and down vote totals for a meme.
func (r *VoteRepository) Counts(ctx context.Context, memeID uint) (up, down int, err error) {
	type row struct {
		Type  string
		Count int
	}
	var rows []row
	err = r.db.WithContext(ctx).
		Model(&models.Vote{}).
		Select("type, COUNT(*) AS count").
		Where("meme_id = ?", memeID).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return 0, 0, err
	}
	for _, r := range rows {
		switch r.Type {
		case models.VoteUp:
			up = r.Count
		case models.VoteDown:
			down = r.Count
		}
	}
	return up, down, nil
}

// Find returns the user's existing vote on a meme, or nil.
func (r *VoteRepository) Find(ctx context.Context, memeID, userID uint) (*models.Vote, error) {
	var vote models.Vote
	err := r.db.WithContext(ctx).
		Where("meme_id = ? AND user_id = ?", memeID, userID).
		First(&vote).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &vote, nil
}
