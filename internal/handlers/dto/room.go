package dto

import "time"

type CreateRoomRequest struct {
	GameID      string     `json:"gameId" binding:"required,uuid"`
	MinSlot     int        `json:"minSlot" binding:"omitempty,min=1,max=100"`
	MaxSlot     int        `json:"maxSlot" binding:"required,min=1,max=100"`
	RankMinID   *string    `json:"rankMinId" binding:"omitempty,uuid"`
	RankMaxID   *string    `json:"rankMaxId" binding:"omitempty,uuid"`
	TypePlay    string     `json:"typePlay" binding:"omitempty,oneof=casual competitive custom tournament"`
	RoomType    string     `json:"roomType" binding:"omitempty,oneof=public private"`
	RoomCode    *string    `json:"roomCode" binding:"omitempty,max=100"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

// UpdateRoomRequest is partial: omitted fields keep their value.
type UpdateRoomRequest struct {
	GameID      *string    `json:"gameId" binding:"omitempty,uuid"`
	MinSlot     *int       `json:"minSlot" binding:"omitempty,min=1,max=100"`
	MaxSlot     *int       `json:"maxSlot" binding:"omitempty,min=1,max=100"`
	RankMinID   *string    `json:"rankMinId" binding:"omitempty,uuid"`
	RankMaxID   *string    `json:"rankMaxId" binding:"omitempty,uuid"`
	TypePlay    *string    `json:"typePlay" binding:"omitempty,oneof=casual competitive custom tournament"`
	RoomType    *string    `json:"roomType" binding:"omitempty,oneof=public private"`
	RoomCode    *string    `json:"roomCode" binding:"omitempty,max=100"`
	Status      *string    `json:"status" binding:"omitempty,oneof=open closed in-progress completed"`
	ScheduledAt *time.Time `json:"scheduledAt"`
	ExpiresAt   *time.Time `json:"expiresAt"`

	// A null rank id reads the same as an omitted one, so dropping a bound
	// needs its own flag.
	ClearRankMin bool `json:"clearRankMin"`
	ClearRankMax bool `json:"clearRankMax"`
}

type RoomQuery struct {
	GameID    string `form:"gameId" binding:"omitempty,uuid"`
	UserID    string `form:"userId" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,oneof=open closed in-progress completed"`
	TypePlay  string `form:"typePlay" binding:"omitempty,oneof=casual competitive custom tournament"`
	RoomType  string `form:"roomType" binding:"omitempty,oneof=public private"`
	SortBy    string `form:"sortBy" binding:"omitempty,oneof=createdAt updatedAt scheduledAt status"`
	SortOrder string `form:"sortOrder" binding:"omitempty,oneof=asc desc"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

type ReportPlayerRequest struct {
	Reason string `json:"reason" binding:"required"`
}
