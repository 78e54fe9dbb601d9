package services

import (
	"context"
	"strings"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/database"
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type GameFilter struct {
	Search    string
	Genre     string
	Platform  string
	SortBy    string
	SortOrder string
	Page      int
	Limit     int
}

type GameInput struct {
	Title       *string
	Genre       *string
	Platform    *string
	ReleaseDate *time.Time
	Ranks       []string
}

type GamePage struct {
	Data []models.Game `json:"data"`
	Meta PageMeta      `json:"meta"`
}

type GameService struct {
	db  *database.Database
	log *logrus.Logger
}

func NewGameService(db *database.Database, log *logrus.Logger) *GameService {
	return &GameService{db: db, log: log}
}

func (s *GameService) GetGame(ctx context.Context, id uuid.UUID) (*models.Game, error) {
	game, err := s.db.WithContext(ctx).GetGame(id)
	if err != nil {
		return nil, storageErr(err, "Game not found")
	}
	return game, nil
}

func (s *GameService) ListGames(ctx context.Context, f GameFilter) (*GamePage, error) {
	page, limit, offset := normalizePage(f.Page, f.Limit)
	if f.SortOrder == "" && (f.SortBy == "" || f.SortBy == "title") {
		f.SortOrder = "asc"
	}

	games, total, err := s.db.WithContext(ctx).ListGames(database.GameQuery{
		Search:    strings.TrimSpace(f.Search),
		Genre:     f.Genre,
		Platform:  f.Platform,
		SortBy:    f.SortBy,
		SortOrder: f.SortOrder,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, storageErr(err, "")
	}
	return &GamePage{Data: games, Meta: newPageMeta(total, page, limit)}, nil
}

func (s *GameService) ListRanks(ctx context.Context, gameID uuid.UUID) ([]models.GameRank, error) {
	game, err := s.GetGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.Ranks, nil
}

// CreateGame stores a game and its rank ladder, lowest rank first.
func (s *GameService) CreateGame(ctx context.Context, in GameInput) (*models.Game, error) {
	if in.Title == nil || strings.TrimSpace(*in.Title) == "" {
		return nil, BadRequest("Title is required")
	}

	game := &models.Game{
		Title:       strings.TrimSpace(*in.Title),
		Genre:       in.Genre,
		Platform:    in.Platform,
		ReleaseDate: in.ReleaseDate,
	}
	err := s.db.Transaction(ctx, func(tx *database.Database) error {
		if err := tx.SaveGame(game); err != nil {
			return err
		}
		for i, name := range in.Ranks {
			rank := models.GameRank{GameID: game.ID, Name: name, Position: i + 1}
			if err := tx.SaveGameRank(&rank); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err, "")
	}

	s.log.WithField("game_id", game.ID).Info("game created")
	return s.GetGame(ctx, game.ID)
}

func (s *GameService) UpdateGame(ctx context.Context, id uuid.UUID, in GameInput) (*models.Game, error) {
	fields := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, BadRequest("Title cannot be empty")
		}
		fields["title"] = title
	}
	if in.Genre != nil {
		fields["genre"] = *in.Genre
	}
	if in.Platform != nil {
		fields["platform"] = *in.Platform
	}
	if in.ReleaseDate != nil {
		fields["release_date"] = *in.ReleaseDate
	}

	if len(fields) == 0 {
		return s.GetGame(ctx, id)
	}
	if err := s.db.WithContext(ctx).UpdateGameFields(id, fields); err != nil {
		return nil, storageErr(err, "Game not found")
	}
	return s.GetGame(ctx, id)
}

func (s *GameService) DeleteGame(ctx context.Context, id uuid.UUID) error {
	if err := s.db.WithContext(ctx).DeleteGame(id); err != nil {
		return storageErr(err, "Game not found")
	}
	s.log.WithField("game_id", id).Info("game deleted")
	return nil
}
