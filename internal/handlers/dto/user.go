package dto

type UpdateProfileRequest struct {
	Name   *string `json:"name" binding:"omitempty,min=1,max=100"`
	Avatar *string `json:"avatar" binding:"omitempty,max=255"`
	Bio    *string `json:"bio" binding:"omitempty,max=500"`
}
