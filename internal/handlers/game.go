package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/Faisd405/ayomabar-be/internal/handlers/dto"
	"github.com/Faisd405/ayomabar-be/internal/services"
)

type GameHandler struct {
	games *services.GameService
}

func NewGameHandler(games *services.GameService) *GameHandler {
	return &GameHandler{games: games}
}

func (h *GameHandler) ListGames(c *gin.Context) {
	var q dto.GameQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindFailed(c, err)
		return
	}

	page, err := h.games.ListGames(c.Request.Context(), services.GameFilter{
		Search:    q.Search,
		Genre:     q.Genre,
		Platform:  q.Platform,
		SortBy:    q.SortBy,
		SortOrder: q.SortOrder,
		Page:      q.Page,
		Limit:     q.Limit,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Games retrieved successfully", page)
}

func (h *GameHandler) GetGame(c *gin.Context) {
	id, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	game, err := h.games.GetGame(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Game retrieved successfully", game)
}

func (h *GameHandler) ListRanks(c *gin.Context) {
	id, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	ranks, err := h.games.ListRanks(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Game ranks retrieved successfully", ranks)
}

func (h *GameHandler) CreateGame(c *gin.Context) {
	var req dto.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	game, err := h.games.CreateGame(c.Request.Context(), services.GameInput{
		Title:       &req.Title,
		Genre:       req.Genre,
		Platform:    req.Platform,
		ReleaseDate: req.ReleaseDate,
		Ranks:       req.Ranks,
	})
	if err != nil {
		fail(c, err)
		return
	}
	created(c, "Game created successfully", game)
}

func (h *GameHandler) UpdateGame(c *gin.Context) {
	id, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	var req dto.UpdateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	game, err := h.games.UpdateGame(c.Request.Context(), id, services.GameInput{
		Title:       req.Title,
		Genre:       req.Genre,
		Platform:    req.Platform,
		ReleaseDate: req.ReleaseDate,
	})
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, "Game updated successfully", game)
}

func (h *GameHandler) DeleteGame(c *gin.Context) {
	id, valid := paramUUID(c, "id")
	if !valid {
		return
	}

	if err := h.games.DeleteGame(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	ok(c, "Game deleted successfully", nil)
}
