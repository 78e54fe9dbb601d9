package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faisd405/ayomabar-be/internal/services"
)

type allowRooms map[uuid.UUID]bool

func (a allowRooms) CanWatch(ctx context.Context, userID, roomID uuid.UUID) error {
	if !a[roomID] {
		return errors.New("missing")
	}
	return nil
}

func newTestHub() *Hub {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewHub(log)
}

func connect(h *Hub, userID uuid.UUID) *Client {
	c := NewClient(h, nil, userID)
	h.registerClient(c)
	return c
}

func next(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw := <-c.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	default:
		t.Fatal("expected a queued message")
	}
	return Message{}
}

func assertEmpty(t *testing.T, c *Client) {
	t.Helper()
	assert.Len(t, c.Send, 0)
}

func TestRoomChangedReachesSubscribersAndAffectedUser(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()

	watcher := connect(h, uuid.New())
	h.Subscribe(watcher, roomID)

	affectedUser := uuid.New()
	affected := connect(h, affectedUser)

	bystander := connect(h, uuid.New())

	ev := services.RoomEvent{
		Type:    services.EventRequestApproved,
		RoomID:  roomID,
		UserID:  affectedUser,
		ActorID: uuid.New(),
		At:      time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, h.RoomChanged(context.Background(), ev))

	msg := next(t, watcher)
	assert.Equal(t, TypeRoomEvent, msg.Type)
	require.NotNil(t, msg.RoomID)
	assert.Equal(t, roomID, *msg.RoomID)

	var got services.RoomEvent
	require.NoError(t, json.Unmarshal(msg.Data, &got))
	assert.Equal(t, services.EventRequestApproved, got.Type)
	assert.Equal(t, affectedUser, got.UserID)

	assert.Equal(t, TypeRoomEvent, next(t, affected).Type)
	assertEmpty(t, bystander)
}

func TestSubscribedAffectedUserGetsOneCopy(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()
	userID := uuid.New()

	c := connect(h, userID)
	h.Subscribe(c, roomID)

	require.NoError(t, h.RoomChanged(context.Background(), services.RoomEvent{
		Type: services.EventPlayerJoined, RoomID: roomID, UserID: userID,
	}))
	next(t, c)
	assertEmpty(t, c)
}

func TestClientSubscriptionMessages(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()
	c := connect(h, uuid.New())
	guard := allowRooms{roomID: true}

	c.handle(guard, &Message{Type: TypeRoomSubscribe, RoomID: &roomID})
	assert.Equal(t, TypeSubscribed, next(t, c).Type)
	assert.True(t, c.isSubscribed(roomID))
	assert.Len(t, h.subscribers(roomID), 1)

	unknown := uuid.New()
	c.handle(guard, &Message{Type: TypeRoomSubscribe, RoomID: &unknown})
	msg := next(t, c)
	assert.Equal(t, TypeError, msg.Type)
	assert.Contains(t, string(msg.Data), ErrRoomNotFound.Error())

	c.handle(guard, &Message{Type: TypeRoomSubscribe})
	assert.Equal(t, TypeError, next(t, c).Type)

	c.handle(guard, &Message{Type: "shout"})
	assert.Equal(t, TypeError, next(t, c).Type)

	c.handle(guard, &Message{Type: TypeRoomUnsubscribe, RoomID: &roomID})
	assert.Equal(t, TypeUnsubscribed, next(t, c).Type)
	assert.False(t, c.isSubscribed(roomID))
	assert.Empty(t, h.subscribers(roomID))
}

func TestUnregisterDropsSubscriptions(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()
	userID := uuid.New()

	c := connect(h, userID)
	h.Subscribe(c, roomID)
	assert.Equal(t, 1, h.OnlineCount())

	h.unregisterClient(c)
	assert.Equal(t, 0, h.OnlineCount())
	assert.Empty(t, h.subscribers(roomID))

	_, open := <-c.Send
	assert.False(t, open)

	// events for the room no longer touch the closed client
	require.NoError(t, h.RoomChanged(context.Background(), services.RoomEvent{
		Type: services.EventRoomUpdated, RoomID: roomID, UserID: userID,
	}))
}

func TestDeletedRoomClearsSubscribers(t *testing.T) {
	h := newTestHub()
	roomID := uuid.New()
	c := connect(h, uuid.New())
	h.Subscribe(c, roomID)

	require.NoError(t, h.RoomChanged(context.Background(), services.RoomEvent{
		Type: services.EventRoomDeleted, RoomID: roomID,
	}))
	assert.Equal(t, TypeRoomEvent, next(t, c).Type)
	assert.Eventually(t, func() bool {
		return !c.isSubscribed(roomID)
	}, time.Second, 10*time.Millisecond)
}
