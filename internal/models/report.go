package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportStatus string

const ReportStatusPending ReportStatus = "pending"

const (
	ReportReasonMinLen = 10
	ReportReasonMaxLen = 500
)

type PlayerReport struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID         uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_player_report_once" json:"roomId"`
	ReporterID     uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_player_report_once" json:"reporterId"`
	ReportedUserID uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_player_report_once;index" json:"reportedUserId"`
	Reason         string       `gorm:"size:500;not null" json:"reason"`
	Status         ReportStatus `gorm:"size:20;not null;default:'pending'" json:"status"`
	CreatedAt      time.Time    `json:"createdAt"`

	Room         Room `gorm:"foreignKey:RoomID" json:"-"`
	Reporter     User `gorm:"foreignKey:ReporterID" json:"-"`
	ReportedUser User `gorm:"foreignKey:ReportedUserID" json:"-"`
}

func (r *PlayerReport) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
