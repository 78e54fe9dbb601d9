package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RoomStatus string

const (
	RoomStatusOpen       RoomStatus = "open"
	RoomStatusClosed     RoomStatus = "closed"
	RoomStatusInProgress RoomStatus = "in-progress"
	RoomStatusCompleted  RoomStatus = "completed"
)

func (s RoomStatus) Valid() bool {
	switch s {
	case RoomStatusOpen, RoomStatusClosed, RoomStatusInProgress, RoomStatusCompleted:
		return true
	}
	return false
}

// Terminal reports whether the status ends the lobby regardless of expiry.
func (s RoomStatus) Terminal() bool {
	return s == RoomStatusClosed || s == RoomStatusCompleted
}

type TypePlay string

const (
	TypePlayCasual      TypePlay = "casual"
	TypePlayCompetitive TypePlay = "competitive"
	TypePlayCustom      TypePlay = "custom"
	TypePlayTournament  TypePlay = "tournament"
)

func (t TypePlay) Valid() bool {
	switch t {
	case TypePlayCasual, TypePlayCompetitive, TypePlayCustom, TypePlayTournament:
		return true
	}
	return false
}

type RoomType string

const (
	RoomTypePublic  RoomType = "public"
	RoomTypePrivate RoomType = "private"
)

func (t RoomType) Valid() bool {
	return t == RoomTypePublic || t == RoomTypePrivate
}

const (
	MinSlotFloor   = 1
	MaxSlotCeiling = 100
)

type Room struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	GameID           uuid.UUID      `gorm:"type:uuid;not null;index" json:"gameId"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;index:idx_rooms_host_status" json:"userId"`
	MinSlot          int            `gorm:"not null;default:1" json:"minSlot"`
	MaxSlot          int            `gorm:"not null;default:1" json:"maxSlot"`
	RankMinID        *uuid.UUID     `gorm:"type:uuid" json:"rankMinId"`
	RankMaxID        *uuid.UUID     `gorm:"type:uuid" json:"rankMaxId"`
	TypePlay         TypePlay       `gorm:"size:20;not null;default:'casual'" json:"typePlay"`
	RoomType         RoomType       `gorm:"size:20;not null;default:'public'" json:"roomType"`
	RoomCode         *string        `gorm:"size:100" json:"roomCode"`
	Status           RoomStatus     `gorm:"size:20;not null;default:'open';index:idx_rooms_host_status" json:"status"`
	ScheduledAt      *time.Time     `json:"scheduledAt"`
	ExpiresAt        *time.Time     `gorm:"index" json:"expiresAt"`
	DiscordMessageID *string        `gorm:"size:32" json:"discordMessageId"`
	DiscordChannelID *string        `gorm:"size:32" json:"discordChannelId"`
	LastBumpedAt     *time.Time     `json:"lastBumpedAt"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Game     Game          `gorm:"foreignKey:GameID" json:"-"`
	Host     User          `gorm:"foreignKey:UserID" json:"-"`
	RankMin  *GameRank     `gorm:"foreignKey:RankMinID" json:"-"`
	RankMax  *GameRank     `gorm:"foreignKey:RankMaxID" json:"-"`
	Requests []RoomRequest `gorm:"foreignKey:RoomID" json:"-"`
}

func (r *Room) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// HasPresentation reports whether the lobby has been rendered to a chat channel.
func (r *Room) HasPresentation() bool {
	return r.DiscordMessageID != nil && *r.DiscordMessageID != "" &&
		r.DiscordChannelID != nil && *r.DiscordChannelID != ""
}

// IsExpired reports whether a lobby no longer accepts interaction. It is
// derived on every call and never stored.
func IsExpired(status RoomStatus, expiresAt *time.Time, now time.Time) bool {
	if status.Terminal() {
		return true
	}
	return expiresAt != nil && !now.Before(*expiresAt)
}

func (r *Room) ExpiredAt(now time.Time) bool {
	return IsExpired(r.Status, r.ExpiresAt, now)
}
