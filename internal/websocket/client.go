package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait = 10 * time.Second

	pongWait = 60 * time.Second

	// must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4 * 1024
)

// RoomGuard decides whether a user may watch a room's feed.
type RoomGuard interface {
	CanWatch(ctx context.Context, userID, roomID uuid.UUID) error
}

func NewClient(hub *Hub, conn *websocket.Conn, userID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New(),
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 64),
		Rooms:  make(map[uuid.UUID]bool),
		Hub:    hub,
	}
}

// ReadPump handles subscription requests until the connection drops.
func (c *Client) ReadPump(guard RoomGuard) {
	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		var msg Message
		if err := c.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.WithError(err).WithField("client_id", c.ID).Warn("websocket read failed")
			}
			return
		}
		c.handle(guard, &msg)
	}
}

func (c *Client) handle(guard RoomGuard, msg *Message) {
	switch msg.Type {
	case TypePong:
		return

	case TypeRoomSubscribe:
		if msg.RoomID == nil {
			c.SendError(ErrInvalidMessage.Error())
			return
		}
		if guard != nil {
			if err := guard.CanWatch(c.Hub.ctx, c.UserID, *msg.RoomID); err != nil {
				c.SendError(ErrRoomNotFound.Error())
				return
			}
		}
		c.Hub.Subscribe(c, *msg.RoomID)
		c.reply(TypeSubscribed, msg.RoomID)

	case TypeRoomUnsubscribe:
		if msg.RoomID == nil {
			c.SendError(ErrInvalidMessage.Error())
			return
		}
		c.Hub.Unsubscribe(c, *msg.RoomID)
		c.reply(TypeUnsubscribed, msg.RoomID)

	default:
		c.SendError(ErrUnknownType.Error())
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) reply(msgType MessageType, roomID *uuid.UUID) {
	data, err := json.Marshal(Message{Type: msgType, RoomID: roomID, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *Client) SendError(errorMsg string) {
	payload, _ := json.Marshal(map[string]string{"error": errorMsg})
	data, err := json.Marshal(Message{Type: TypeError, Data: payload, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}
	c.enqueue(data)
}

func (c *Client) enqueue(data []byte) {
	select {
	case c.Send <- data:
	default:
	}
}

func (c *Client) isSubscribed(roomID uuid.UUID) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Rooms[roomID]
}

func (c *Client) GetRooms() []uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rooms := make([]uuid.UUID, 0, len(c.Rooms))
	for roomID := range c.Rooms {
		rooms = append(rooms, roomID)
	}
	return rooms
}
