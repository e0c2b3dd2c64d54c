package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/srrathi/cyberplace-be/internal/models"
	"github.com/srrathi/cyberplace-be/internal/realtime"
)

// trendingSource is the slice of the meme repository the detector needs.
type trendingSource interface {
	TopVotedSince(ctx context.Context, since time.Time) (*models.Meme, int, error)
}

// TrendingConfig tunes the detector loop. A meme is highlighted every time
// its vote count in the trailing window crosses a multiple of Modulus.
type TrendingConfig struct {
	Interval time.Duration
	Window   time.Duration
	Modulus  int
}

func (c TrendingConfig) withDefaults() TrendingConfig {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Second
	}
	if c.Window <= 0 {
		c.Window = time.Hour
	}
	if c.Modulus <= 0 {
		c.Modulus = 10
	}
	return c
}

// TrendingDetector periodically scans the vote stream for the hottest meme
// and broadcasts a highlight when it crosses the threshold. It remembers the
// last milestone per meme so a meme sitting at the same count is not
// re-announced every tick.
type TrendingDetector struct {
	memes    trendingSource
	notifier *realtime.Notifier
	cfg      TrendingConfig
	logger   *slog.Logger

	mu        sync.Mutex
	announced map[uint]int

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewTrendingDetector(memes trendingSource, notifier *realtime.Notifier, cfg TrendingConfig, logger *slog.Logger) *TrendingDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &TrendingDetector{
		memes:     memes,
		notifier:  notifier,
		cfg:       cfg.withDefaults(),
		logger:    logger,
		announced: make(map[uint]int),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

// Start launches the scan loop. Call Stop to terminate it.
func (d *TrendingDetector) Start() {
	go d.run()
}

// Stop terminates the loop and waits for the in-flight tick to finish.
func (d *TrendingDetector) Stop() {
	d.once.Do(func() { close(d.stop) })
	<-d.done
}

func (d *TrendingDetector) run() {
	defer close(d.done)
	ticker := time.NewTicker(d.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-d.stop:
			return
		case <-ticker.C:
			d.tick(context.Background())
		}
	}
}

func (d *TrendingDetector) tick(ctx context.Context) {
	meme, votes, err := d.memes.TopVotedSince(ctx, time.Now().Add(-d.cfg.Window))
	if err != nil {
		d.logger.Warn("trending scan failed", "error", err)
		return
	}
	if meme == nil || votes < d.cfg.Modulus {
		return
	}

	milestone := votes - votes%d.cfg.Modulus

	d.mu.Lock()
	last := d.announced[meme.ID]
	if milestone <= last {
		d.mu.Unlock()
		return
	}
	d.announced[meme.ID] = milestone
	d.mu.Unlock()

	if err := d.notifier.Trending(meme.ID, meme.Title, votes); err != nil {
		d.logger.Warn("trending broadcast skipped", "error", err)
	}
}
