package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Faisd405/ayomabar-be/internal/handlers/dto"
	"github.com/Faisd405/ayomabar-be/internal/services"
)

type UserHandler struct {
	users *services.UserService
}

func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

func (h *UserHandler) GetUser(c *gin.Context) {
	id, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "User retrieved successfully", user.Summary())
}

// UpdateMe updates only the fields present in the body.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, services.UpdateProfileInput{
		Name:   req.Name,
		Avatar: req.Avatar,
		Bio:    req.Bio,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Profile updated successfully", user)
}
