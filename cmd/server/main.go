package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/srrathi/cyberplace-be/internal/api/routes"
	"github.com/srrathi/cyberplace-be/internal/config"
	"github.com/srrathi/cyberplace-be/internal/database"
	"github.com/srrathi/cyberplace-be/internal/feed"
	"github.com/srrathi/cyberplace-be/internal/realtime"
	"github.com/srrathi/cyberplace-be/internal/repository"
	"github.com/srrathi/cyberplace-be/internal/services"
	"github.com/srrathi/cyberplace-be/internal/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("failed to load config: ", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)
	logger.Info("starting cyberplace server")

	db, err := database.NewMySQLConnection(cfg.Database.DSN())
	if err != nil {
		logger.Error("failed to connect to mysql", "error", err)
		os.Exit(1)
	}
	if err := database.Migrate(db); err != nil {
		logger.Error("migration failed", "error", err)
		os.Exit(1)
	}

	redisClient, err := database.NewRedisConnection(cfg.Redis.URI)
	if err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	media, err := storage.NewMediaStore(
		cfg.Minio.Endpoint, cfg.Minio.AccessKey, cfg.Minio.SecretKey,
		cfg.Minio.Bucket, cfg.Minio.UseSSL,
	)
	if err != nil {
		logger.Error("failed to connect to object storage", "error", err)
		os.Exit(1)
	}

	publisher := feed.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, logger)
	defer publisher.Close()

	// The realtime core must be running before any service can broadcast.
	hub := realtime.NewHub(cfg.Realtime.ServerID, logger)
	if err := hub.Start(); err != nil {
		logger.Error("failed to start realtime hub", "error", err)
		os.Exit(1)
	}
	notifier := realtime.NewNotifier(hub.Dispatcher())

	userRepo := repository.NewUserRepository(db)
	memeRepo := repository.NewMemeRepository(db)
	bidRepo := repository.NewBidRepository(db)
	voteRepo := repository.NewVoteRepository(db)

	var captions *services.CaptionService
	if cfg.OpenAI.APIKey != "" {
		captions = services.NewCaptionService(
			cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.OpenAI.Model,
			redisClient, cfg.OpenAI.CaptionCacheTTL, logger,
		)
	} else {
		logger.Warn("no openai api key configured, caption generation disabled")
	}

	leaderboard := services.NewLeaderboardService(
		memeRepo, redisClient, notifier,
		cfg.Realtime.LeaderboardSize, cfg.Realtime.LeaderboardTTL, logger,
	)
	svcs := routes.Services{
		Auth:        services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime),
		Memes:       services.NewMemeService(memeRepo, userRepo, media, captions, notifier, publisher, logger),
		Bids:        services.NewBidService(bidRepo, memeRepo, userRepo, notifier, publisher, leaderboard, logger),
		Votes:       services.NewVoteService(voteRepo, memeRepo, userRepo, notifier, publisher, leaderboard, logger),
		Leaderboard: leaderboard,
	}

	trending := services.NewTrendingDetector(memeRepo, notifier, services.TrendingConfig{
		Interval: cfg.Realtime.TrendingInterval,
		Window:   cfg.Realtime.TrendingWindow,
		Modulus:  cfg.Realtime.TrendingModulus,
	}, logger)
	trending.Start()

	router := routes.NewRouter(hub, svcs, redisClient, cfg.JWT.Secret, cfg.Server.AllowedOrigins)
	router.SetupRoutes()

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	trending.Stop()
	hub.Stop()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	logger.Info("server stopped")
}
