package lobbyview

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Faisd405/ayomabar-be/internal/models"
	"github.com/Faisd405/ayomabar-be/internal/services"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Transport publishes cards to a chat channel.
type Transport interface {
	Publish(ctx context.Context, channelID string, card Card) (messageID string, err error)
	Edit(ctx context.Context, channelID, messageID string, card Card) error
	Delete(ctx context.Context, channelID, messageID string) error
}

// Rooms is the part of the lifecycle engine the syncer drives.
type Rooms interface {
	GetRoom(ctx context.Context, roomID uuid.UUID) (*services.RoomDetail, error)
	ExtendExpiry(ctx context.Context, hostID, roomID uuid.UUID, window time.Duration) (*models.Room, error)
	AttachPresentation(ctx context.Context, roomID uuid.UUID, channelID, messageID string) error
	ListExpiring(ctx context.Context, since, until time.Time) ([]models.Room, error)
	Now() time.Time
}

// Syncer keeps each room's chat message in step with the ledger. Chat
// failures are logged and never undo a lifecycle change.
type Syncer struct {
	rooms     Rooms
	transport Transport
	window    time.Duration
	log       *logrus.Logger

	mu          sync.Mutex
	lastRefresh time.Time
}

func NewSyncer(rooms Rooms, transport Transport, window time.Duration, log *logrus.Logger) *Syncer {
	return &Syncer{rooms: rooms, transport: transport, window: window, log: log}
}

// Window is how long a freshly published or bumped lobby stays joinable.
func (s *Syncer) Window() time.Duration {
	return s.window
}

// RoomChanged re-renders the stored message from a fresh read of the room.
func (s *Syncer) RoomChanged(ctx context.Context, ev services.RoomEvent) error {
	switch ev.Type {
	case services.EventRoomCreated, services.EventRoomBumped:
		// Created rooms have no message yet; bumps publish their own.
		return nil
	case services.EventRoomDeleted:
		if ev.ChannelID == "" || ev.MessageID == "" {
			return nil
		}
		return s.transport.Delete(ctx, ev.ChannelID, ev.MessageID)
	}

	detail, err := s.rooms.GetRoom(ctx, ev.RoomID)
	if err != nil {
		return err
	}
	return s.render(ctx, detail)
}

func (s *Syncer) render(ctx context.Context, detail *services.RoomDetail) error {
	if !detail.HasPresentation() {
		return nil
	}
	card := BuildLobbyCard(detail, s.rooms.Now(), LobbyOptions{Variant: VariantLobby})
	return s.transport.Edit(ctx, *detail.DiscordChannelID, *detail.DiscordMessageID, card)
}

// Publish posts a new lobby message for the room and records it.
func (s *Syncer) Publish(ctx context.Context, roomID uuid.UUID, channelID string, opts LobbyOptions) (*services.RoomDetail, error) {
	detail, err := s.rooms.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	card := BuildLobbyCard(detail, s.rooms.Now(), opts)
	messageID, err := s.transport.Publish(ctx, channelID, card)
	if err != nil {
		return nil, fmt.Errorf("publish lobby: %w", err)
	}
	if err := s.rooms.AttachPresentation(ctx, roomID, channelID, messageID); err != nil {
		return nil, err
	}

	detail.DiscordChannelID = &channelID
	detail.DiscordMessageID = &messageID
	return detail, nil
}

// Bump restarts the room's expiry and re-posts its lobby at the bottom of
// channelID. The expiry change is committed before any chat traffic; the old
// message is removed on a best-effort basis.
func (s *Syncer) Bump(ctx context.Context, actorID, roomID uuid.UUID, channelID, bumpedBy string) (*services.RoomDetail, error) {
	room, err := s.rooms.ExtendExpiry(ctx, actorID, roomID, s.window)
	if err != nil {
		return nil, err
	}

	if room.HasPresentation() {
		if err := s.transport.Delete(ctx, *room.DiscordChannelID, *room.DiscordMessageID); err != nil {
			s.log.WithFields(logrus.Fields{
				"room_id":    roomID,
				"channel_id": *room.DiscordChannelID,
				"message_id": *room.DiscordMessageID,
			}).WithError(err).Warn("could not delete old lobby message")
		}
	}

	return s.Publish(ctx, roomID, channelID, LobbyOptions{Variant: VariantBumped, BumpedBy: bumpedBy})
}

// RefreshExpired re-renders lobbies whose expiry fell in [since, until) so
// their controls show as expired. It returns how many were updated.
func (s *Syncer) RefreshExpired(ctx context.Context, since, until time.Time) (int, error) {
	rooms, err := s.rooms.ListExpiring(ctx, since, until)
	if err != nil {
		return 0, err
	}

	refreshed := 0
	for _, r := range rooms {
		detail, err := s.rooms.GetRoom(ctx, r.ID)
		if err != nil {
			s.log.WithField("room_id", r.ID).WithError(err).Warn("could not load expiring room")
			continue
		}
		if err := s.render(ctx, detail); err != nil {
			s.log.WithField("room_id", r.ID).WithError(err).Warn("could not refresh expired lobby")
			continue
		}
		refreshed++
	}
	return refreshed, nil
}

// Run refreshes newly expired lobbies every interval until ctx is done.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.mu.Lock()
	s.lastRefresh = s.rooms.Now().Add(-interval)
	s.mu.Unlock()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Syncer) tick(ctx context.Context) {
	now := s.rooms.Now()

	s.mu.Lock()
	since := s.lastRefresh
	s.lastRefresh = now
	s.mu.Unlock()

	n, err := s.RefreshExpired(ctx, since, now)
	if err != nil {
		s.log.WithError(err).Warn("lobby refresh failed")
		return
	}
	if n > 0 {
		s.log.WithField("count", n).Debug("expired lobbies refreshed")
	}
}
