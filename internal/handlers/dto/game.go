package dto

import "time"

type GameQuery struct {
	Search    string `form:"search"`
	Genre     string `form:"genre"`
	Platform  string `form:"platform"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=title releaseDate createdAt"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type CreateGameRequest struct {
	Title       string     `json:"title" binding:"required,max=200"`
	Genre       *string    `json:"genre" binding:"omitempty,max=100"`
	Platform    *string    `json:"platform" binding:"omitempty,max=100"`
	ReleaseDate *time.Time `json:"releaseDate"`
	Ranks       []string   `json:"ranks" binding:"omitempty,dive,required,max=100"`
}

type UpdateGameRequest struct {
	Title       *string    `json:"title" binding:"omitempty,max=200"`
	Genre       *string    `json:"genre" binding:"omitempty,max=100"`
	Platform    *string    `json:"platform" binding:"omitempty,max=100"`
	ReleaseDate *time.Time `json:"releaseDate"`
}
