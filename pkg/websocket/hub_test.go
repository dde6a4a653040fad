package websocket

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func receive(t *testing.T, client *Client) *Envelope {
	t.Helper()

	select {
	case data := <-client.send:
		var msg Envelope
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	default:
		t.Fatal("expected a frame on the client send channel")
		return nil
	}
}

func TestBroadcastToRoom(t *testing.T) {
	hub := NewHub()

	a := NewClient(hub, nil, primitive.NewObjectID(), "customer")
	b := NewClient(hub, nil, primitive.NewObjectID(), "astrologer")
	hub.registerClient(a)
	hub.registerClient(b)

	hub.JoinRoom(a, "room1")
	hub.JoinRoom(b, "room1")
	assert.Equal(t, 2, hub.RoomSize("room1"))

	hub.BroadcastToRoom("room1", Envelope{Type: "message", Data: map[string]interface{}{"content": "hello"}})

	for _, client := range []*Client{a, b} {
		msg := receive(t, client)
		assert.Equal(t, "message", msg.Type)
		assert.Equal(t, "hello", msg.Data["content"])
		assert.NotZero(t, msg.Timestamp)
	}
}

func TestBroadcastToEmptyRoomIsNoop(t *testing.T) {
	hub := NewHub()
	hub.BroadcastToRoom("nobody-here", Envelope{Type: "message"})
}

func TestSendToUserHitsPersonalRoom(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	client := NewClient(hub, nil, userID, "customer")
	hub.registerClient(client)

	hub.SendToUser(userID, Envelope{Type: "notification"})

	msg := receive(t, client)
	assert.Equal(t, "notification", msg.Type)
}

func TestSendToUserReachesAllConnections(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	first := NewClient(hub, nil, userID, "customer")
	second := NewClient(hub, nil, userID, "customer")
	hub.registerClient(first)
	hub.registerClient(second)

	hub.SendToUser(userID, Envelope{Type: "notification"})

	receive(t, first)
	receive(t, second)
}

func TestSlowClientIsDropped(t *testing.T) {
	hub := NewHub()

	client := NewClient(hub, nil, primitive.NewObjectID(), "customer")
	hub.registerClient(client)
	hub.JoinRoom(client, "room1")

	// Fill the send buffer so the next broadcast cannot be delivered.
	for i := 0; i < cap(client.send); i++ {
		client.send <- []byte("{}")
	}

	hub.BroadcastToRoom("room1", Envelope{Type: "message"})

	assert.Equal(t, 0, hub.RoomSize("room1"))
}

func TestSlowClientDropLeavesEveryRoom(t *testing.T) {
	hub := NewHub()
	userID := primitive.NewObjectID()

	slow := NewClient(hub, nil, userID, "customer")
	hub.registerClient(slow)
	hub.JoinRoom(slow, "room1")
	hub.JoinRoom(slow, "room2")

	healthy := NewClient(hub, nil, primitive.NewObjectID(), "astrologer")
	hub.registerClient(healthy)
	hub.JoinRoom(healthy, "room2")

	for i := 0; i < cap(slow.send); i++ {
		slow.send <- []byte("{}")
	}

	// The drop in room1 must also evict the client from room2 and its
	// personal room; a send on the closed channel there would panic.
	hub.BroadcastToRoom("room1", Envelope{Type: "message"})

	assert.Equal(t, 0, hub.RoomSize("room1"))
	assert.Equal(t, 1, hub.RoomSize("room2"))
	assert.Equal(t, 0, hub.RoomSize(UserRoom(userID)))
	assert.Empty(t, slow.rooms)

	assert.NotPanics(t, func() {
		hub.SendToUser(userID, Envelope{Type: "notification"})
		hub.BroadcastToRoom("room2", Envelope{Type: "message"})
	})

	msg := receive(t, healthy)
	assert.Equal(t, "message", msg.Type)
}

func TestDropAfterUnregisterIsNoop(t *testing.T) {
	hub := NewHub()

	client := NewClient(hub, nil, primitive.NewObjectID(), "customer")
	hub.registerClient(client)
	hub.unregisterClient(client)

	assert.NotPanics(t, func() {
		hub.unregisterClient(client)
	})
}

func TestLeaveRoom(t *testing.T) {
	hub := NewHub()

	client := NewClient(hub, nil, primitive.NewObjectID(), "customer")
	hub.registerClient(client)
	hub.JoinRoom(client, "room1")
	require.Equal(t, 1, hub.RoomSize("room1"))

	hub.LeaveRoom(client, "room1")
	assert.Equal(t, 0, hub.RoomSize("room1"))
}

func TestUnregisterCleansRooms(t *testing.T) {
	hub := NewHub()

	client := NewClient(hub, nil, primitive.NewObjectID(), "customer")
	hub.registerClient(client)
	hub.JoinRoom(client, "room1")

	hub.unregisterClient(client)

	assert.Equal(t, 0, hub.RoomSize("room1"))
	assert.Equal(t, 0, hub.RoomSize(UserRoom(client.UserID)))
}
