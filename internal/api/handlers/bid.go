package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/srrathi/cyberplace-be/internal/api/middleware"
	"github.com/srrathi/cyberplace-be/internal/services"
	"github.com/srrathi/cyberplace-be/pkg/response"
)

type BidHandler struct {
	bids *services.BidService
}

func NewBidHandler(bids *services.BidService) *BidHandler {
	return &BidHandler{bids: bids}
}

// Place debits the caller and records a bid on a meme.
// POST /api/v1/bids
func (h *BidHandler) Place(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req services.PlaceBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	bid, err := h.bids.Place(c.Request.Context(), userID, req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, bid)
}

// History returns recent bids on one meme.
// GET /api/v1/bids/meme/:id?limit=20
func (h *BidHandler) History(c *gin.Context) {
	memeID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid meme id")
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	bids, err := h.bids.History(c.Request.Context(), uint(memeID), limit)
	if err != nil {
		response.ServerError(c, "failed to load bid history")
		return
	}

	response.OK(c, bids)
}
