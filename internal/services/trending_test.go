package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/srrathi/cyberplace-be/internal/models"
)

type stubTrendingSource struct {
	meme  *models.Meme
	votes int
	err   error
	since time.Time
}

func (s *stubTrendingSource) TopVotedSince(ctx context.Context, since time.Time) (*models.Meme, int, error) {
	s.since = since
	return s.meme, s.votes, s.err
}

func newTestDetector(t *testing.T, src trendingSource, cfg TrendingConfig) *TrendingDetector {
	t.Helper()
	return NewTrendingDetector(src, newTestNotifier(t), cfg, discardLogger())
}

func TestTrendingDetectorTick(t *testing.T) {
	meme := &models.Meme{Title: "distracted gopher"}
	meme.ID = 7

	t.Run("BelowThresholdStaysQuiet", func(t *testing.T) {
		src := &stubTrendingSource{meme: meme, votes: 9}
		d := newTestDetector(t, src, TrendingConfig{Modulus: 10})

		d.tick(context.Background())

		assert.Empty(t, d.announced)
	})

	t.Run("RecordsMilestoneAtThreshold", func(t *testing.T) {
		src := &stubTrendingSource{meme: meme, votes: 12}
		d := newTestDetector(t, src, TrendingConfig{Modulus: 10})

		d.tick(context.Background())

		assert.Equal(t, 10, d.announced[meme.ID])
	})

	t.Run("DoesNotReannounceSameMilestone", func(t *testing.T) {
		src := &stubTrendingSource{meme: meme, votes: 14}
		d := newTestDetector(t, src, TrendingConfig{Modulus: 10})

		d.tick(context.Background())
		d.tick(context.Background())

		assert.Equal(t, 10, d.announced[meme.ID])
	})

	t.Run("AnnouncesNextMilestone", func(t *testing.T) {
		src := &stubTrendingSource{meme: meme, votes: 11}
		d := newTestDetector(t, src, TrendingConfig{Modulus: 10})

		d.tick(context.Background())
		src.votes = 23
		d.tick(context.Background())

		assert.Equal(t, 20, d.announced[meme.ID])
	})

	t.Run("UsesConfiguredWindow", func(t *testing.T) {
		src := &stubTrendingSource{}
		d := newTestDetector(t, src, TrendingConfig{Window: 2 * time.Hour})

		before := time.Now().Add(-2 * time.Hour)
		d.tick(context.Background())

		assert.WithinDuration(t, before, src.since, time.Minute)
	})

	t.Run("SurvivesScanError", func(t *testing.T) {
		src := &stubTrendingSource{err: errors.New("db down")}
		d := newTestDetector(t, src, TrendingConfig{})

		d.tick(context.Background())

		assert.Empty(t, d.announced)
	})
}

func TestTrendingDetectorStartStop(t *testing.T) {
	src := &stubTrendingSource{}
	d := newTestDetector(t, src, TrendingConfig{Interval: 5 * time.Millisecond})

	d.Start()
	time.Sleep(20 * time.Millisecond)
	d.Stop()
}
