// Package lobbyview decides how a room is presented on the chat surface and
// keeps that presentation in step with the room.
package lobbyview

import (
	"time"

	"github.com/Faisd405/ayomabar-be/internal/models"
)

type JoinState int

const (
	JoinStateJoinable JoinState = iota
	JoinStateFull
	JoinStateExpired
)

func (s JoinState) String() string {
	switch s {
	case JoinStateFull:
		return "full"
	case JoinStateExpired:
		return "expired"
	}
	return "joinable"
}

// IsExpired must be evaluated on every render and interaction; the answer is
// never cached.
func IsExpired(status models.RoomStatus, expiresAt *time.Time, now time.Time) bool {
	return models.IsExpired(status, expiresAt, now)
}

// JoinStateOf picks the join control's state. Expired wins over full.
func JoinStateOf(room *models.Room, occupied int64, now time.Time) JoinState {
	if IsExpired(room.Status, room.ExpiresAt, now) {
		return JoinStateExpired
	}
	if occupied >= int64(room.MaxSlot) {
		return JoinStateFull
	}
	return JoinStateJoinable
}
