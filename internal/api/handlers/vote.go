package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/srrathi/cyberplace-be/internal/api/middleware"
	"github.com/srrathi/cyberplace-be/internal/services"
	"github.com/srrathi/cyberplace-be/pkg/response"
)

type VoteHandler struct {
	votes *services.VoteService
}

func NewVoteHandler(votes *services.VoteService) *VoteHandler {
	return &VoteHandler{votes: votes}
}

// Cast records or flips the caller's vote on a meme.
// POST /api/v1/votes
func (h *VoteHandler) Cast(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req services.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.votes.Cast(c.Request.Context(), userID, req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.OK(c, gin.H{"memeId": req.MemeID, "type": req.Type})
}
