package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/srrathi/cyberplace-be/internal/feed"
	"github.com/srrathi/cyberplace-be/internal/models"
	"github.com/srrathi/cyberplace-be/internal/realtime"
	"github.com/srrathi/cyberplace-be/internal/repository"
)

type PlaceBidRequest struct {
	MemeID uint    `json:"memeId" binding:"required"`
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

type BidService struct {
	bids        *repository.BidRepository
	memes       *repository.MemeRepository
	users       *repository.UserRepository
	notifier    *realtime.Notifier
	feed        *feed.Publisher
	leaderboard *LeaderboardService
	logger      *slog.Logger
}

func NewBidService(
	bids *repository.BidRepository,
	memes *repository.MemeRepository,
	users *repository.UserRepository,
	notifier *realtime.Notifier,
	publisher *feed.Publisher,
	leaderboard *LeaderboardService,
	logger *slog.Logger,
) *BidService {
	if logger == nil {
		logger = slog.Default()
	}
	return &BidService{
		bids:        bids,
		memes:       memes,
		users:       users,
		notifier:    notifier,
		feed:        publisher,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// Place debits the bidder, records the bid, bumps the meme's running total
// and announces the new state. Every mutation is committed before any
// broadcast is attempted.
func (s *BidService) Place(ctx context.Context, userID uint, req PlaceBidRequest) (*models.Bid, error) {
	meme, err := s.memes.FindByID(ctx, req.MemeID)
	if err != nil {
		return nil, errors.New("meme not found")
	}
	if meme.OwnerID == userID {
		return nil, errors.New("cannot bid on your own meme")
	}
	bidder, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, errors.New("bidder not found")
	}

	if err := s.users.AdjustCredits(ctx, userID, -req.Amount); err != nil {
		return nil, err
	}
	bid := &models.Bid{MemeID: meme.ID, UserID: userID, Amount: req.Amount}
	if err := s.bids.Create(ctx, bid); err != nil {
		// Refund on failure to record; best effort.
		if rerr := s.users.AdjustCredits(ctx, userID, req.Amount); rerr != nil {
			s.logger.Error("refund after failed bid insert failed", "userId", userID, "error", rerr)
		}
		return nil, err
	}
	newTotal, err := s.memes.AddToTotalBid(ctx, meme.ID, req.Amount)
	if err != nil {
		return nil, err
	}

	if err := s.notifier.BidPlaced(bidder.Username, req.Amount, meme.ID, newTotal, meme.Title); err != nil {
		s.logger.Warn("bid broadcast skipped", "error", err)
	}
	if owner, err := s.users.FindByID(ctx, meme.OwnerID); err == nil {
		s.notifier.NotifyUser(owner.Username, bidder.Username+" bid on your meme "+meme.Title)
	}
	s.feed.Publish(ctx, realtime.EventBidUpdate.String(), map[string]interface{}{
		"memeId":   meme.ID,
		"userId":   userID,
		"amount":   req.Amount,
		"newTotal": newTotal,
	})
	s.leaderboard.Invalidate(ctx)
	return bid, nil
}

func (s *BidService) History(ctx context.Context, memeID uint, limit int) ([]models.Bid, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.bids.ListByMeme(ctx, memeID, limit)
}
