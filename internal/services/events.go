package services

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type RoomEventType string

const (
	EventRoomCreated     RoomEventType = "created"
	EventRoomUpdated     RoomEventType = "updated"
	EventRoomDeleted     RoomEventType = "deleted"
	EventPlayerJoined    RoomEventType = "joined"
	EventPlayerRequested RoomEventType = "requested"
	EventRequestApproved RoomEventType = "approved"
	EventRequestRejected RoomEventType = "rejected"
	EventPlayerKicked    RoomEventType = "kicked"
	EventPlayerLeft      RoomEventType = "left"
	EventRoomBumped      RoomEventType = "bumped"
)

// RoomEvent describes a committed change to a room. UserID is the member
// affected, when there is one.
type RoomEvent struct {
	Type    RoomEventType `json:"type"`
	RoomID  uuid.UUID     `json:"roomId"`
	UserID  uuid.UUID     `json:"userId,omitempty"`
	ActorID uuid.UUID     `json:"actorId"`
	At      time.Time     `json:"at"`

	// Last known presentation of a deleted room, so it can be retired.
	ChannelID string `json:"-"`
	MessageID string `json:"-"`
}

// Notifier receives room events after the change has been committed. Errors
// are logged by the publisher and never undo the change.
type Notifier interface {
	RoomChanged(ctx context.Context, ev RoomEvent) error
}
