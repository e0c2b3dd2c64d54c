package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/srrathi/cyberplace-be/internal/realtime"
	"github.com/srrathi/cyberplace-be/internal/repository"
)

const leaderboardCacheKey = "leaderboard:top"

// LeaderboardService serves the standings from a short-lived redis cache in
// front of the aggregation query, and tells connected clients when the
// standings may have moved.
type LeaderboardService struct {
	memes    *repository.MemeRepository
	redis    *redis.Client
	notifier *realtime.Notifier
	size     int
	cacheTTL time.Duration
	logger   *slog.Logger
}

func NewLeaderboardService(
	memes *repository.MemeRepository,
	redisClient *redis.Client,
	notifier *realtime.Notifier,
	size int,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = 10
	}
	return &LeaderboardService{
		memes:    memes,
		redis:    redisClient,
		notifier: notifier,
		size:     size,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Standings returns the current top memes, cached.
func (s *LeaderboardService) Standings(ctx context.Context) ([]repository.LeaderboardEntry, error) {
	if cached, err := s.redis.Get(ctx, leaderboardCacheKey).Bytes(); err == nil {
		var entries []repository.LeaderboardEntry
		if err := json.Unmarshal(cached, &entries); err == nil {
			return entries, nil
		}
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("leaderboard cache read failed", "error", err)
	}

	entries, err := s.memes.Leaderboard(ctx, s.size)
	if err != nil {
		return nil, err
	}

	if raw, err := json.Marshal(entries); err == nil {
		if err := s.redis.Set(ctx, leaderboardCacheKey, raw, s.cacheTTL).Err(); err != nil {
			s.logger.Warn("leaderboard cache write failed", "error", err)
		}
	}
	return entries, nil
}

// Invalidate drops the cache and notifies clients that standings changed.
func (s *LeaderboardService) Invalidate(ctx context.Context) {
	if err := s.redis.Del(ctx, leaderboardCacheKey).Err(); err != nil {
		s.logger.Warn("leaderboard cache invalidation failed", "error", err)
	}
	if err := s.notifier.LeaderboardChanged(); err != nil {
		s.logger.Warn("leaderboard broadcast skipped", "error", err)
	}
}
