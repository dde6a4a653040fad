package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Hub is the connection registry for chat rooms and per-user notification
// channels. Delivery is best effort: a connection that can't keep up is
// closed and dropped so one dead client never stalls a room broadcast.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	rooms      map[string]map[*Client]bool
	inbound    InboundHandler
	mutex      sync.RWMutex
}

// Envelope is the JSON frame exchanged over every socket.
type Envelope struct {
	Type      string                 `json:"type"`
	Action    string                 `json:"action,omitempty"`
	RoomID    string                 `json:"room_id,omitempty"`
	UserID    primitive.ObjectID     `json:"user_id,omitempty"`
	Timestamp int64                  `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// InboundHandler receives client frames the hub doesn't handle itself
// (chat send/read actions). Implemented by the chat service.
type InboundHandler interface {
	HandleInbound(client *Client, msg *Envelope)
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		rooms:      make(map[string]map[*Client]bool),
	}
}

// SetInboundHandler must be called before Run.
func (h *Hub) SetInboundHandler(handler InboundHandler) {
	h.inbound = handler
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.clients[client] = true

	// Every client listens on their personal room for notifications.
	h.joinRoom(client, UserRoom(client.UserID))
	for roomID := range client.rooms {
		h.joinRoom(client, roomID)
	}
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.dropClient(client)
}

// dropClient removes the client from every room it joined, including its
// personal room, and closes the send channel exactly once. Callers must
// hold the write lock.
func (h *Hub) dropClient(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	for roomID := range client.rooms {
		h.removeFromRoom(client, roomID)
	}

	close(client.send)
}

// removeFromRoom keeps the hub's room map and the client's own room set in
// step. Callers must hold the write lock.
func (h *Hub) removeFromRoom(client *Client, roomID string) {
	delete(client.rooms, roomID)

	if room, exists := h.rooms[roomID]; exists {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, roomID)
		}
	}
}

// BroadcastToRoom delivers msg to every connection currently in the room.
func (h *Hub) BroadcastToRoom(roomID string, msg Envelope) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	room, exists := h.rooms[roomID]
	if !exists {
		return
	}

	if msg.Timestamp == 0 {
		msg.Timestamp = time.Now().Unix()
	}

	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("websocket: failed to marshal envelope: %v", err)
		return
	}

	for client := range room {
		select {
		case client.send <- data:
		default:
			// Presumed dead. Drop it from every room it joined, not just
			// this one, or a later broadcast would hit the closed channel.
			h.dropClient(client)
		}
	}
}

// SendToUser delivers msg to all of the user's live connections.
func (h *Hub) SendToUser(userID primitive.ObjectID, msg Envelope) {
	h.BroadcastToRoom(UserRoom(userID), msg)
}

func (h *Hub) JoinRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.joinRoom(client, roomID)
}

func (h *Hub) LeaveRoom(client *Client, roomID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.removeFromRoom(client, roomID)
}

// RoomSize reports how many connections are registered under a room id.
func (h *Hub) RoomSize(roomID string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[roomID])
}

func (h *Hub) joinRoom(client *Client, roomID string) {
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[*Client]bool)
	}
	h.rooms[roomID][client] = true
	client.rooms[roomID] = true
}

// UserRoom is the personal room id for direct notification delivery.
func UserRoom(userID primitive.ObjectID) string {
	return "user_" + userID.Hex()
}
