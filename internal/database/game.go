package database

import (
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GameQuery struct {
	Search    string
	Genre     string
	Platform  string
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

var gameSortColumns = map[string]string{
	"title":       "title",
	"releaseDate": "release_date",
	"createdAt":   "created_at",
}

func (d *Database) SaveGame(game *models.Game) error {
	return d.db.Create(game).Error
}

func (d *Database) GetGame(id uuid.UUID) (*models.Game, error) {
	var game models.Game
	err := d.db.Preload("Ranks", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	}).First(&game, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (d *Database) ListGames(q GameQuery) ([]models.Game, int64, error) {
	tx := d.db.Model(&models.Game{})
	if q.Search != "" {
		tx = tx.Where("LOWER(title) LIKE LOWER(?)", "%"+q.Search+"%")
	}
	if q.Genre != "" {
		tx = tx.Where("genre = ?", q.Genre)
	}
	if q.Platform != "" {
		tx = tx.Where("platform = ?", q.Platform)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var games []models.Game
	err := tx.Order(orderClause(gameSortColumns, q.SortBy, "title", q.SortOrder)).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&games).Error
	if err != nil {
		return nil, 0, err
	}
	return games, total, nil
}

func (d *Database) UpdateGameFields(id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := d.db.Model(&models.Game{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *Database) DeleteGame(id uuid.UUID) error {
	res := d.db.Delete(&models.Game{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *Database) SaveGameRank(rank *models.GameRank) error {
	return d.db.Create(rank).Error
}

func (d *Database) ListGameRanks(gameID uuid.UUID) ([]models.GameRank, error) {
	var ranks []models.GameRank
	err := d.db.Where("game_id = ?", gameID).Order("position ASC").Find(&ranks).Error
	return ranks, err
}

func (d *Database) GetGameRank(id uuid.UUID) (*models.GameRank, error) {
	var rank models.GameRank
	if err := d.db.First(&rank, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rank, nil
}

// orderClause whitelists the sort column so user input never reaches SQL.
func orderClause(columns map[string]string, sortBy, fallback, sortOrder string) string {
	col, ok := columns[sortBy]
	if !ok {
		col = columns[fallback]
	}
	if sortOrder == "asc" {
		return col + " ASC"
	}
	return col + " DESC"
}
