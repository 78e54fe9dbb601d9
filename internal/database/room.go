package database

import (
	"time"

	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomQuery struct {
	GameID    *uuid.UUID
	UserID    *uuid.UUID
	Status    string
	TypePlay  string
	RoomType  string
	SortBy    string
	SortOrder string
	Offset    int
	Limit     int
}

var roomSortColumns = map[string]string{
	"createdAt":   "created_at",
	"updatedAt":   "updated_at",
	"scheduledAt": "scheduled_at",
	"status":      "status",
}

func (d *Database) CreateRoom(room *models.Room) error {
	return d.db.Omit(clause.Associations).Create(room).Error
}

func (d *Database) GetRoom(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	err := d.db.
		Preload("Game").
		Preload("Host").
		Preload("RankMin").
		Preload("RankMax").
		First(&room, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// LockRoom loads the bare room row and, on postgres, holds a row lock until
// the surrounding transaction ends. Joins and approvals for the same room
// serialize on it.
func (d *Database) LockRoom(id uuid.UUID) (*models.Room, error) {
	var room models.Room
	if err := d.forUpdate().First(&room, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

// FindActiveHostedRoom returns a room the user hosts that is still live:
// open or in progress and not past its expiry.
func (d *Database) FindActiveHostedRoom(userID uuid.UUID, now time.Time) (*models.Room, error) {
	var room models.Room
	err := d.db.
		Where("user_id = ? AND status IN ?", userID, []models.RoomStatus{models.RoomStatusOpen, models.RoomStatusInProgress}).
		Where("expires_at IS NULL OR expires_at > ?", now).
		Order("created_at DESC").
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (d *Database) UpdateRoomFields(id uuid.UUID, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := d.db.Model(&models.Room{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRoom soft-deletes the room together with its active requests.
func (d *Database) DeleteRoom(id uuid.UUID) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("room_id = ?", id).Delete(&models.RoomRequest{}).Error; err != nil {
			return err
		}

		res := tx.Delete(&models.Room{}, "id = ?", id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (d *Database) ListRooms(q RoomQuery) ([]models.Room, int64, error) {
	tx := d.db.Model(&models.Room{})
	if q.GameID != nil {
		tx = tx.Where("game_id = ?", *q.GameID)
	}
	if q.UserID != nil {
		tx = tx.Where("user_id = ?", *q.UserID)
	}
	if q.Status != "" {
		tx = tx.Where("status = ?", q.Status)
	}
	if q.TypePlay != "" {
		tx = tx.Where("type_play = ?", q.TypePlay)
	}
	if q.RoomType != "" {
		tx = tx.Where("room_type = ?", q.RoomType)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rooms []models.Room
	err := tx.
		Preload("Game").
		Preload("Host").
		Order(orderClause(roomSortColumns, q.SortBy, "createdAt", q.SortOrder)).
		Offset(q.Offset).
		Limit(q.Limit).
		Find(&rooms).Error
	if err != nil {
		return nil, 0, err
	}
	return rooms, total, nil
}

// ListExpiringRooms returns rendered open rooms whose expiry falls in [since, until).
func (d *Database) ListExpiringRooms(since, until time.Time) ([]models.Room, error) {
	var rooms []models.Room
	err := d.db.
		Where("status = ?", models.RoomStatusOpen).
		Where("discord_message_id IS NOT NULL AND discord_channel_id IS NOT NULL").
		Where("expires_at >= ? AND expires_at < ?", since, until).
		Order("expires_at ASC").
		Find(&rooms).Error
	return rooms, err
}

// CountOccupied counts the slots taken in a room. Host rows are always
// accepted so the host is included.
func (d *Database) CountOccupied(roomID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.Model(&models.RoomRequest{}).
		Where("room_id = ? AND status = ?", roomID, models.RequestStatusAccepted).
		Count(&count).Error
	return count, err
}

func (d *Database) CountOccupiedByRoom(roomIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	counts := make(map[uuid.UUID]int64, len(roomIDs))
	if len(roomIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		RoomID uuid.UUID
		Total  int64
	}
	err := d.db.Model(&models.RoomRequest{}).
		Select("room_id, COUNT(*) AS total").
		Where("room_id IN ? AND status = ?", roomIDs, models.RequestStatusAccepted).
		Group("room_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		counts[r.RoomID] = r.Total
	}
	return counts, nil
}
