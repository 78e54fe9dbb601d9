package database

import (
	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (d *Database) CreatePlayerReport(report *models.PlayerReport) error {
	return d.db.Omit(clause.Associations).Create(report).Error
}

func (d *Database) PlayerReportExists(roomID, reporterID, reportedUserID uuid.UUID) (bool, error) {
	var count int64
	err := d.db.Model(&models.PlayerReport{}).
		Where("room_id = ? AND reporter_id = ? AND reported_user_id = ?", roomID, reporterID, reportedUserID).
		Count(&count).Error
	return count > 0, err
}
