package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusAccepted RequestStatus = "accepted"
	RequestStatusRejected RequestStatus = "rejected"
)

// RoomRequest is one user's membership in one room. At most one non-deleted
// row exists per (room, user); the partial unique index enforces it.
type RoomRequest struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RoomID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_room_requests_active,unique,where:deleted_at IS NULL" json:"roomId"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_room_requests_active,unique,where:deleted_at IS NULL" json:"userId"`
	Status    RequestStatus  `gorm:"size:20;not null;default:'pending'" json:"status"`
	IsHost    bool           `gorm:"not null;default:false" json:"isHost"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Room Room `gorm:"foreignKey:RoomID" json:"-"`
	User User `gorm:"foreignKey:UserID" json:"-"`
}

func (r *RoomRequest) BeforeCreate(tx *gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

// Membership is the tagged view of a RoomRequest: either the room's host or a
// participant with an approval status. Only participants can be kicked,
// rejected, approved or leave.
type Membership interface {
	membership()
}

type HostMembership struct{}

type ParticipantMembership struct {
	Status RequestStatus
}

func (HostMembership) membership()        {}
func (ParticipantMembership) membership() {}

// Resolvable reports whether the host can still approve or reject the request.
func (p ParticipantMembership) Resolvable() bool {
	return p.Status == RequestStatusPending
}

func (p ParticipantMembership) Kickable() bool {
	return p.Status != RequestStatusRejected
}

func (p ParticipantMembership) Leavable() bool {
	return p.Status != RequestStatusRejected
}

func (r *RoomRequest) Membership() Membership {
	if r.IsHost {
		return HostMembership{}
	}
	return ParticipantMembership{Status: r.Status}
}
