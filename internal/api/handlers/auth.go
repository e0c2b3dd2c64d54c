package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/srrathi/cyberplace-be/internal/repository"
	"github.com/srrathi/cyberplace-be/internal/services"
	"github.com/srrathi/cyberplace-be/pkg/response"
)

type AuthHandler struct {
	auth *services.AuthService
}

func NewAuthHandler(auth *services.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register creates a new account.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			response.Conflict(c, "username or email already taken")
			return
		}
		response.ServerError(c, "failed to create account")
		return
	}

	response.Created(c, user)
}

// Login verifies credentials and returns a signed token.
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	res, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Unauthorized(c, "invalid credentials")
			return
		}
		response.ServerError(c, "login failed")
		return
	}

	response.OK(c, res)
}
