package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/Faisd405/ayomabar-be/internal/services"
)

type MessageType string

const (
	TypePing MessageType = "ping"
	TypePong MessageType = "pong"

	TypeRoomSubscribe   MessageType = "room_subscribe"
	TypeRoomUnsubscribe MessageType = "room_unsubscribe"
	TypeSubscribed      MessageType = "subscribed"
	TypeUnsubscribed    MessageType = "unsubscribed"

	TypeRoomEvent MessageType = "room_event"
	TypeError     MessageType = "error"
)

type Message struct {
	Type      MessageType     `json:"type"`
	RoomID    *uuid.UUID      `json:"room_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

type Client struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Conn   *websocket.Conn
	Send   chan []byte
	Rooms  map[uuid.UUID]bool
	Hub    *Hub
	mu     sync.RWMutex
}

// Hub fans committed room events out to the clients watching those rooms.
type Hub struct {
	clients map[uuid.UUID]*Client

	// one user may hold several connections
	userClients map[uuid.UUID]map[uuid.UUID]*Client

	// subscribers per room
	rooms map[uuid.UUID]map[uuid.UUID]*Client

	register   chan *Client
	unregister chan *Client

	mu  sync.RWMutex
	log *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(log *logrus.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		userClients: make(map[uuid.UUID]map[uuid.UUID]*Client),
		rooms:       make(map[uuid.UUID]map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		log:         log,
		ctx:         ctx,
		cancel:      cancel,
	}
}

func (h *Hub) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ticker.C:
			h.ping()
		}
	}
}

// Stop ends the hub loop and drops every connection. The pumps unwind on
// their own once the sockets are closed.
func (h *Hub) Stop() {
	h.cancel()

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients {
		if client.Conn != nil {
			client.Conn.Close()
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client

	if _, ok := h.userClients[client.UserID]; !ok {
		h.userClients[client.UserID] = make(map[uuid.UUID]*Client)
	}
	h.userClients[client.UserID][client.ID] = client

	h.log.WithFields(logrus.Fields{"client_id": client.ID, "user_id": client.UserID}).Debug("websocket client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}

	for _, roomID := range client.GetRooms() {
		h.removeFromRoomUnsafe(client, roomID)
	}

	if userClients, ok := h.userClients[client.UserID]; ok {
		delete(userClients, client.ID)
		if len(userClients) == 0 {
			delete(h.userClients, client.UserID)
		}
	}

	delete(h.clients, client.ID)
	close(client.Send)

	h.log.WithFields(logrus.Fields{"client_id": client.ID, "user_id": client.UserID}).Debug("websocket client unregistered")
}

// Subscribe starts delivering a room's events to the client.
func (h *Hub) Subscribe(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[uuid.UUID]*Client)
	}
	h.rooms[roomID][client.ID] = client

	client.mu.Lock()
	client.Rooms[roomID] = true
	client.mu.Unlock()
}

func (h *Hub) Unsubscribe(client *Client, roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeFromRoomUnsafe(client, roomID)
}

func (h *Hub) removeFromRoomUnsafe(client *Client, roomID uuid.UUID) {
	room, ok := h.rooms[roomID]
	if !ok {
		return
	}
	delete(room, client.ID)
	if len(room) == 0 {
		delete(h.rooms, roomID)
	}

	client.mu.Lock()
	delete(client.Rooms, roomID)
	client.mu.Unlock()
}

// RoomChanged pushes the event to the room's subscribers and to the affected
// member, who may not be watching the room.
func (h *Hub) RoomChanged(ctx context.Context, ev services.RoomEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	roomID := ev.RoomID
	data, err := json.Marshal(Message{
		Type:      TypeRoomEvent,
		RoomID:    &roomID,
		Data:      payload,
		Timestamp: ev.At,
	})
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := make(map[uuid.UUID]bool)
	for _, client := range h.rooms[ev.RoomID] {
		h.deliver(client, data)
		sent[client.ID] = true
	}
	if ev.UserID != uuid.Nil {
		for _, client := range h.userClients[ev.UserID] {
			if !sent[client.ID] {
				h.deliver(client, data)
			}
		}
	}

	if ev.Type == services.EventRoomDeleted {
		go h.dropRoom(ev.RoomID)
	}
	return nil
}

func (h *Hub) dropRoom(roomID uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.rooms[roomID] {
		h.removeFromRoomUnsafe(client, roomID)
	}
}

func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.Send <- data:
	default:
		h.log.WithField("client_id", client.ID).Warn("websocket send buffer full, dropping message")
	}
}

func (h *Hub) ping() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, err := json.Marshal(Message{Type: TypePing, Timestamp: time.Now().UTC()})
	if err != nil {
		return
	}
	for _, client := range h.clients {
		select {
		case client.Send <- data:
		default:
		}
	}
}

func (h *Hub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients)
}

// subscribers lists the users currently watching a room.
func (h *Hub) subscribers(roomID uuid.UUID) []uuid.UUID {
	h.mu.RLock()
	defer h.mu.RUnlock()

	seen := make(map[uuid.UUID]bool)
	users := make([]uuid.UUID, 0)
	for _, client := range h.rooms[roomID] {
		if !seen[client.UserID] {
			seen[client.UserID] = true
			users = append(users, client.UserID)
		}
	}
	return users
}
