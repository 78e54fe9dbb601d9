package lobbyview

import (
	"testing"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDetail(now time.Time) *services.RoomDetail {
	code := "https://discord.gg/abc"
	expires := now.Add(5 * time.Minute)
	room := &models.Room{
		ID:        uuid.New(),
		MinSlot:   2,
		MaxSlot:   4,
		TypePlay:  models.TypePlayCompetitive,
		RoomType:  models.RoomTypePublic,
		RoomCode:  &code,
		Status:    models.RoomStatusOpen,
		ExpiresAt: &expires,
		CreatedAt: now,
	}
	return &services.RoomDetail{
		Room:              room,
		Game:              models.GameSummary{Title: "Valorant"},
		Host:              models.UserSummary{Username: "alice"},
		ParticipantsCount: 2,
		Participants: []services.Participant{
			{User: models.UserSummary{Username: "alice"}, IsHost: true},
			{User: models.UserSummary{Username: "bob"}},
		},
	}
}

func fieldValue(c Card, name string) (string, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

func TestBuildLobbyCardJoinable(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := sampleDetail(now)

	card := BuildLobbyCard(d, now, LobbyOptions{Variant: VariantCreated})

	assert.Equal(t, ColorSuccess, card.Color)
	players, ok := fieldValue(card, "👥 Players")
	require.True(t, ok)
	assert.Equal(t, "2/4", players)
	status, _ := fieldValue(card, "📊 Status")
	assert.Equal(t, "OPEN", status)
	_, ok = fieldValue(card, "🔑 Room Code")
	assert.True(t, ok)
	expires, _ := fieldValue(card, "⏰ Expires At")
	assert.Contains(t, expires, ":R>")

	require.Len(t, card.Controls, 3)
	join := card.Controls[0]
	assert.Equal(t, "join_room_"+d.ID.String(), join.ID)
	assert.Equal(t, "Join Room", join.Label)
	assert.Equal(t, StyleSuccess, join.Style)
	assert.False(t, join.Disabled)
	assert.False(t, card.Controls[2].Disabled)
}

func TestBuildLobbyCardFullAndExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := sampleDetail(now)
	d.ParticipantsCount = 4

	card := BuildLobbyCard(d, now, LobbyOptions{})
	assert.Equal(t, "Room Full", card.Controls[0].Label)
	assert.True(t, card.Controls[0].Disabled)
	assert.False(t, card.Controls[2].Disabled, "a full room can still be bumped")

	later := now.Add(10 * time.Minute)
	card = BuildLobbyCard(d, later, LobbyOptions{})
	assert.Equal(t, "Expired - Cannot Join", card.Controls[0].Label)
	assert.Equal(t, StyleDanger, card.Controls[0].Style)
	assert.True(t, card.Controls[0].Disabled)
	assert.True(t, card.Controls[2].Disabled)
	assert.False(t, card.Controls[1].Disabled, "info stays available")
	status, _ := fieldValue(card, "📊 Status")
	assert.Equal(t, "EXPIRED", status)
	assert.Equal(t, ColorDanger, card.Color)
}

func TestBuildLobbyCardHidesPrivateRoomCode(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := sampleDetail(now)
	d.RoomType = models.RoomTypePrivate

	card := BuildLobbyCard(d, now, LobbyOptions{Variant: VariantBumped, BumpedBy: "alice"})
	_, ok := fieldValue(card, "🔑 Room Code")
	assert.False(t, ok)
	assert.Contains(t, card.Footer, "Bumped by alice")
}

func TestBuildInfoCard(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	d := sampleDetail(now)
	d.RoomType = models.RoomTypePrivate
	d.PendingCount = 3

	card := BuildInfoCard(d, now)

	players, ok := fieldValue(card, "✅ Current Players")
	require.True(t, ok)
	assert.Equal(t, "• alice 👑\n• bob", players)
	pending, ok := fieldValue(card, "⏳ Pending Requests")
	require.True(t, ok)
	assert.Equal(t, "3", pending)
	_, ok = fieldValue(card, "🔑 Room Code")
	assert.True(t, ok, "info replies are private so the code is shown")
}

func TestParseControlID(t *testing.T) {
	id := uuid.New()

	for _, action := range []Action{ActionJoin, ActionInfo, ActionBump} {
		got, roomID, err := ParseControlID(ControlID(action, id))
		require.NoError(t, err)
		assert.Equal(t, action, got)
		assert.Equal(t, id, roomID)
	}

	_, _, err := ParseControlID("join_room_42")
	assert.Error(t, err)
	_, _, err = ParseControlID("leave_room_" + id.String())
	assert.Error(t, err)
}
