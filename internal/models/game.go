package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Game struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string         `gorm:"size:200;not null;index" json:"title"`
	Genre       *string        `gorm:"size:100" json:"genre"`
	Platform    *string        `gorm:"size:100" json:"platform"`
	ReleaseDate *time.Time     `json:"releaseDate"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	Ranks []GameRank `gorm:"foreignKey:GameID" json:"ranks,omitempty"`
}

func (g *Game) BeforeCreate(tx *gorm.DB) error {
	ensureID(&g.ID)
	return nil
}

// GameRank is one step of a game's rank ladder. Position orders the ladder,
// lowest first.
type GameRank struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	GameID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_game_rank_position" json:"gameId"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Position  int       `gorm:"not null;uniqueIndex:idx_game_rank_position" json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r *GameRank) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// GameSummary is the projection of a game embedded in room payloads.
type GameSummary struct {
	ID       uuid.UUID `json:"id"`
	Title    string    `json:"title"`
	Genre    *string   `json:"genre"`
	Platform *string   `json:"platform"`
}

func (g *Game) Summary() GameSummary {
	return GameSummary{ID: g.ID, Title: g.Title, Genre: g.Genre, Platform: g.Platform}
}
