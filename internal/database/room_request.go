package database

import (
	"time"

	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (d *Database) CreateRoomRequest(req *models.RoomRequest) error {
	return d.db.Omit(clause.Associations).Create(req).Error
}

// GetRoomRequest loads an active request together with its room.
func (d *Database) GetRoomRequest(id uuid.UUID) (*models.RoomRequest, error) {
	var req models.RoomRequest
	if err := d.db.Preload("Room").Preload("User").First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (d *Database) FindActiveRequest(roomID, userID uuid.UUID) (*models.RoomRequest, error) {
	var req models.RoomRequest
	err := d.db.Where("room_id = ? AND user_id = ?", roomID, userID).First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindRejectedRequest looks through deleted rows too, so a kick keeps
// blocking the user after the row is soft-deleted.
func (d *Database) FindRejectedRequest(roomID, userID uuid.UUID) (*models.RoomRequest, error) {
	var req models.RoomRequest
	err := d.db.Unscoped().
		Where("room_id = ? AND user_id = ? AND status = ?", roomID, userID, models.RequestStatusRejected).
		Order("updated_at DESC").
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// HasRequested reports whether the user has ever had a request in the room,
// deleted or not.
func (d *Database) HasRequested(roomID, userID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Unscoped().Model(&models.RoomRequest{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Count(&count).Error
	return count > 0, err
}

// ResolveRequest moves a pending request to a final status. It only matches a
// row that is still pending, so two concurrent resolutions cannot both win.
func (d *Database) ResolveRequest(id uuid.UUID, status models.RequestStatus) error {
	res := d.db.Model(&models.RoomRequest{}).
		Where("id = ? AND status = ?", id, models.RequestStatusPending).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (d *Database) DeleteRoomRequest(id uuid.UUID) error {
	res := d.db.Delete(&models.RoomRequest{}, "id = ? AND is_host = ?", id, false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// KickRoomRequest rejects and soft-deletes the row in one statement.
func (d *Database) KickRoomRequest(id uuid.UUID, at time.Time) error {
	res := d.db.Model(&models.RoomRequest{}).
		Where("id = ? AND is_host = ?", id, false).
		Updates(map[string]interface{}{
			"status":     models.RequestStatusRejected,
			"deleted_at": at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRoomRequests returns the active requests of a room, newest first.
func (d *Database) ListRoomRequests(roomID uuid.UUID) ([]models.RoomRequest, error) {
	var reqs []models.RoomRequest
	err := d.db.Preload("User").
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Find(&reqs).Error
	return reqs, err
}

// ListAcceptedMembers returns the accepted rows of a room, host first.
func (d *Database) ListAcceptedMembers(roomID uuid.UUID) ([]models.RoomRequest, error) {
	var reqs []models.RoomRequest
	err := d.db.Preload("User").
		Where("room_id = ? AND status = ?", roomID, models.RequestStatusAccepted).
		Order("is_host DESC, created_at ASC").
		Find(&reqs).Error
	return reqs, err
}

func (d *Database) CountRequestsByStatus(roomID uuid.UUID) (map[models.RequestStatus]int64, error) {
	var rows []struct {
		Status models.RequestStatus
		Total  int64
	}
	err := d.db.Model(&models.RoomRequest{}).
		Select("status, COUNT(*) AS total").
		Where("room_id = ?", roomID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.RequestStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}

// CountHostRows counts active host rows of a room; a valid room has exactly one.
func (d *Database) CountHostRows(roomID uuid.UUID) (int64, error) {
	var count int64
	err := d.db.Model(&models.RoomRequest{}).
		Where("room_id = ? AND is_host = ?", roomID, true).
		Count(&count).Error
	return count, err
}
