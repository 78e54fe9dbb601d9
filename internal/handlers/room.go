package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Faisd405/ayomabar-be/internal/handlers/dto"
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/internal/services"
)

type RoomHandler struct {
	rooms *services.RoomService
}

func NewRoomHandler(rooms *services.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}

	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	gameID, err := uuid.Parse(req.GameID)
	if err != nil {
		badRequest(c, "Invalid gameId")
		return
	}
	rankMin, err := parseOptionalUUID(req.RankMinID)
	if err != nil {
		badRequest(c, "Invalid rankMinId")
		return
	}
	rankMax, err := parseOptionalUUID(req.RankMaxID)
	if err != nil {
		badRequest(c, "Invalid rankMaxId")
		return
	}

	room, err := h.rooms.CreateRoom(c.Request.Context(), userID, services.CreateRoomInput{
		GameID:      gameID,
		MinSlot:     req.MinSlot,
		MaxSlot:     req.MaxSlot,
		RankMinID:   rankMin,
		RankMaxID:   rankMax,
		TypePlay:    models.TypePlay(req.TypePlay),
		RoomType:    models.RoomType(req.RoomType),
		RoomCode:    req.RoomCode,
		ScheduledAt: req.ScheduledAt,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "Room created successfully", room)
}

func (h *RoomHandler) ListRooms(c *gin.Context) {
	var q dto.RoomQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	filter := services.RoomFilter{
		Status:    models.RoomStatus(q.Status),
		TypePlay:  models.TypePlay(q.TypePlay),
		RoomType:  models.RoomType(q.RoomType),
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		Limit:     q.Limit,
	}
	var err error
	if filter.GameID, err = parseOptionalUUID(&q.GameID); err != nil {
		badRequest(c, "Invalid gameId")
		return
	}
	if filter.UserID, err = parseOptionalUUID(&q.UserID); err != nil {
		badRequest(c, "Invalid userId")
		return
	}

	page, err := h.rooms.ListRooms(c.Request.Context(), filter)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Rooms retrieved successfully", page)
}

func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	detail, err := h.rooms.GetRoom(c.Request.Context(), roomID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Room retrieved successfully", detail)
}

func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	roomID, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	in := services.UpdateRoomInput{
		MinSlot:      req.MinSlot,
		MaxSlot:      req.MaxSlot,
		RoomCode:     req.RoomCode,
		ScheduledAt:  req.ScheduledAt,
		ExpiresAt:    req.ExpiresAt,
		ClearRankMin: req.ClearRankMin,
		ClearRankMax: req.ClearRankMax,
	}
	var err error
	if in.GameID, err = parseOptionalUUID(req.GameID); err != nil {
		badRequest(c, "Invalid gameId")
		return
	}
	if in.RankMinID, err = parseOptionalUUID(req.RankMinID); err != nil {
		badRequest(c, "Invalid rankMinId")
		return
	}
	if in.RankMaxID, err = parseOptionalUUID(req.RankMaxID); err != nil {
		badRequest(c, "Invalid rankMaxId")
		return
	}
	if req.TypePlay != nil {
		v := models.TypePlay(*req.TypePlay)
		in.TypePlay = &v
	}
	if req.RoomType != nil {
		v := models.RoomType(*req.RoomType)
		in.RoomType = &v
	}
	if req.Status != nil {
		v := models.RoomStatus(*req.Status)
		in.Status = &v
	}

	room, err := h.rooms.UpdateRoom(c.Request.Context(), userID, roomID, in)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Room updated successfully", room)
}

func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	roomID, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	if err := h.rooms.DeleteRoom(c.Request.Context(), userID, roomID); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Room deleted successfully", nil)
}

// JoinRoom answers with the request; public rooms accept it immediately.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	roomID, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	res, err := h.rooms.JoinRoom(c.Request.Context(), userID, roomID)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, res.Message, res.Request)
}

func (h *RoomHandler) LeaveRoom(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	roomID, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	if err := h.rooms.LeaveRoom(c.Request.Context(), userID, roomID); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Successfully left the room", nil)
}

func (h *RoomHandler) GetRoomRequests(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	roomID, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	requests, err := h.rooms.GetRoomRequests(c.Request.Context(), userID, roomID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Room requests retrieved successfully", requests)
}

func (h *RoomHandler) ApproveRequest(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	requestID, valid := paramUUID(c, "requestId")
	if !valid {
		return
	}

	req, err := h.rooms.ApproveRoomRequest(c.Request.Context(), userID, requestID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Room request approved successfully", req)
}

func (h *RoomHandler) RejectRequest(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	requestID, valid := paramUUID(c, "requestId")
	if !valid {
		return
	}

	req, err := h.rooms.RejectRoomRequest(c.Request.Context(), userID, requestID)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Room request rejected successfully", req)
}

func (h *RoomHandler) KickPlayer(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	roomID, valid := paramUUID(c, "id")
	if !valid {
		return
	}
	targetID, valid := paramUUID(c, "userId")
	if !valid {
		return
	}

	if err := h.rooms.KickPlayer(c.Request.Context(), userID, roomID, targetID); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Player kicked successfully", nil)
}

func (h *RoomHandler) ReportPlayer(c *gin.Context) {
	userID, found := currentUser(c)
	if !found {
		return
	}
	roomID, valid := paramUUID(c, "id")
	if !valid {
		return
	}
	reportedID, valid := paramUUID(c, "userId")
	if !valid {
		return
	}

	var req dto.ReportPlayerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	report, err := h.rooms.ReportPlayer(c.Request.Context(), userID, roomID, reportedID, req.Reason)
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "Player reported successfully", report)
}
