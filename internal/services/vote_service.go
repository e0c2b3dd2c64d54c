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

type CastVoteRequest struct {
	MemeID uint   `json:"memeId" binding:"required"`
	Type   string `json:"type" binding:"required,oneof=up down"`
}

type VoteService struct {
	votes       *repository.VoteRepository
	memes       *repository.MemeRepository
	users       *repository.UserRepository
	notifier    *realtime.Notifier
	feed        *feed.Publisher
	leaderboard *LeaderboardService
	logger      *slog.Logger
}

func NewVoteService(
	votes *repository.VoteRepository,
	memes *repository.MemeRepository,
	users *repository.UserRepository,
	notifier *realtime.Notifier,
	publisher *feed.Publisher,
	leaderboard *LeaderboardService,
	logger *slog.Logger,
) *VoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoteService{
		votes:       votes,
		memes:       memes,
		users:       users,
		notifier:    notifier,
		feed:        publisher,
		leaderboard: leaderboard,
		logger:      logger,
	}
}

// Cast records (or replaces) the user's vote, refreshes the meme's
// aggregates and announces the new counts.
func (s *VoteService) Cast(ctx context.Context, userID uint, req CastVoteRequest) error {
	meme, err := s.memes.FindByID(ctx, req.MemeID)
	if err != nil {
		return errors.New("meme not found")
	}
	voter, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return errors.New("voter not found")
	}

	vote := &models.Vote{MemeID: meme.ID, UserID: userID, Type: req.Type}
	if err := s.votes.Upsert(ctx, vote); err != nil {
		return err
	}
	up, down, err := s.votes.Counts(ctx, meme.ID)
	if err != nil {
		return err
	}
	if err := s.memes.SetVoteCounts(ctx, meme.ID, up, down); err != nil {
		return err
	}

	newCount := up - down
	if err := s.notifier.VoteCast(meme.ID, req.Type, voter.Username, newCount, meme.Title, up, down); err != nil {
		s.logger.Warn("vote broadcast skipped", "error", err)
	}
	s.feed.Publish(ctx, realtime.EventVoteUpdate.String(), map[string]interface{}{
		"memeId": meme.ID,
		"userId": userID,
		"type":   req.Type,
		"up":     up,
		"down":   down,
	})
	s.leaderboard.Invalidate(ctx)
	return nil
}
