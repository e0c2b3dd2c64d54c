package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/srrathi/cyberplace-be/internal/api/middleware"
	"github.com/srrathi/cyberplace-be/internal/services"
	"github.com/srrathi/cyberplace-be/pkg/response"
)

type MemeHandler struct {
	memes *services.MemeService
}

func NewMemeHandler(memes *services.MemeService) *MemeHandler {
	return &MemeHandler{memes: memes}
}

// Create mints a meme from a multipart form: title, optional captionPrompt
// and optional image file.
// POST /api/v1/memes
func (h *MemeHandler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req services.CreateMemeRequest
	if err := c.ShouldBind(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	image, err := c.FormFile("image")
	if err != nil {
		image = nil
	}

	meme, err := h.memes.Create(c.Request.Context(), userID, req, image)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Created(c, meme)
}

// Get returns one meme with its owner.
// GET /api/v1/memes/:id
func (h *MemeHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "invalid meme id")
		return
	}

	meme, err := h.memes.Get(c.Request.Context(), uint(id))
	if err != nil {
		response.NotFound(c, "meme not found")
		return
	}

	response.OK(c, meme)
}

// List returns recent memes, newest first.
// GET /api/v1/memes?limit=20&offset=0
func (h *MemeHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	memes, err := h.memes.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.ServerError(c, "failed to list memes")
		return
	}

	response.OK(c, memes)
}
