package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/srrathi/cyberplace-be/internal/api/handlers"
	"github.com/srrathi/cyberplace-be/internal/api/middleware"
	"github.com/srrathi/cyberplace-be/internal/realtime"
	"github.com/srrathi/cyberplace-be/internal/services"
)

type Router struct {
	engine             *gin.Engine
	wsHandler          *handlers.WSHandler
	authHandler        *handlers.AuthHandler
	memeHandler        *handlers.MemeHandler
	bidHandler         *handlers.BidHandler
	voteHandler        *handlers.VoteHandler
	leaderboardHandler *handlers.LeaderboardHandler
	rateLimitMW        *middleware.RateLimitMiddleware
	authMW             *middleware.AuthMiddleware
}

type Services struct {
	Auth        *services.AuthService
	Memes       *services.MemeService
	Bids        *services.BidService
	Votes       *services.VoteService
	Leaderboard *services.LeaderboardService
}

func NewRouter(
	hub *realtime.Hub,
	svcs Services,
	redisClient *redis.Client,
	jwtSecret string,
	allowedOrigins []string,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(allowedOrigins))
	engine.Use(middleware.RequestLog(nil))

	return &Router{
		engine:             engine,
		wsHandler:          handlers.NewWSHandler(hub, nil),
		authHandler:        handlers.NewAuthHandler(svcs.Auth),
		memeHandler:        handlers.NewMemeHandler(svcs.Memes),
		bidHandler:         handlers.NewBidHandler(svcs.Bids),
		voteHandler:        handlers.NewVoteHandler(svcs.Votes),
		leaderboardHandler: handlers.NewLeaderboardHandler(svcs.Leaderboard),
		rateLimitMW:        middleware.NewRateLimitMiddleware(redisClient),
		authMW:             middleware.NewAuthMiddleware(jwtSecret),
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.engine.Group("/api/v1")

	// Upgrade endpoint; authentication happens over the socket.
	api.GET("/ws", r.wsHandler.HandleWebSocket)

	// Public routes.
	public := api.Group("/")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(r.rateLimitMW.RateLimitIP(50, time.Minute))
		{
			authRoutes.POST("/register", r.authHandler.Register)
			authRoutes.POST("/login", r.authHandler.Login)
		}

		public.GET("/leaderboard", r.leaderboardHandler.Standings)
		public.GET("/memes", r.memeHandler.List)
		public.GET("/memes/:id", r.memeHandler.Get)
		public.GET("/realtime/stats", r.wsHandler.Stats)
	}

	// Authenticated routes.
	auth := api.Group("/")
	auth.Use(r.authMW.RequireAuth())
	{
		memes := auth.Group("/memes")
		memes.Use(r.rateLimitMW.RateLimit(30, time.Minute))
		{
			memes.POST("/", r.memeHandler.Create)
		}

		bids := auth.Group("/bids")
		bids.Use(r.rateLimitMW.RateLimit(100, time.Minute))
		{
			bids.POST("/", r.bidHandler.Place)
			bids.GET("/meme/:id", r.bidHandler.History)
		}

		votes := auth.Group("/votes")
		votes.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			votes.POST("/", r.voteHandler.Cast)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
