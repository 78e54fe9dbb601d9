package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Faisd405/ayomabar-be/internal/handlers/dto"
	"github.com/Faisd405/ayomabar-be/internal/middleware"
	"github.com/Faisd405/ayomabar-be/internal/services"
)

type AuthHandler struct {
	auth  *services.AuthService
	users *services.UserService
}

func NewAuthHandler(auth *services.AuthService, users *services.UserService) *AuthHandler {
	return &AuthHandler{auth: auth, users: users}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res, err := h.auth.Register(c.Request.Context(), services.RegisterRequest{
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "User registered successfully", res)
}

// Login issues a token pair for a username or email.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res, err := h.auth.Login(c.Request.Context(), services.LoginRequest{
		Login:    req.Login,
		Password: req.Password,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Login successful", res)
}

func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	res, err := h.auth.RefreshToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Token refreshed successfully", res)
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "User retrieved successfully", user)
}

// Logout revokes the presented access token until it expires.
func (h *AuthHandler) Logout(c *gin.Context) {
	token := c.GetString(middleware.TokenKey)
	if err := h.auth.Logout(c.Request.Context(), token); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Logout successful", nil)
}
