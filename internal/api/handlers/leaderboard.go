package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/srrathi/cyberplace-be/internal/services"
	"github.com/srrathi/cyberplace-be/pkg/response"
)

type LeaderboardHandler struct {
	leaderboard *services.LeaderboardService
}

func NewLeaderboardHandler(leaderboard *services.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboard: leaderboard}
}

// Standings returns the current top memes by score.
// GET /api/v1/leaderboard
func (h *LeaderboardHandler) Standings(c *gin.Context) {
	entries, err := h.leaderboard.Standings(c.Request.Context())
	if err != nil {
		response.ServerError(c, "failed to load leaderboard")
		return
	}

	response.OK(c, entries)
}
