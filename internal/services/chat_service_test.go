package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"astro-online/internal/models"
	"astro-online/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeChatRepo struct {
	mu       sync.Mutex
	rooms    map[primitive.ObjectID]*models.ChatRoom
	messages []*models.ChatMessage
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{rooms: make(map[primitive.ObjectID]*models.ChatRoom)}
}

func (r *fakeChatRepo) GetOrCreateRoom(ctx context.Context, a, b primitive.ObjectID) (*models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Lower id always sits on side A so a pair maps to one room.
	if b.Hex() < a.Hex() {
		a, b = b, a
	}
	for _, room := range r.rooms {
		if room.ParticipantA == a && room.ParticipantB == b {
			copied := *room
			return &copied, nil
		}
	}

	room := &models.ChatRoom{
		ID:           primitive.NewObjectID(),
		ParticipantA: a,
		ParticipantB: b,
		CreatedAt:    time.Now(),
	}
	r.rooms[room.ID] = room
	copied := *room
	return &copied, nil
}

func (r *fakeChatRepo) GetRoom(ctx context.Context, roomID primitive.ObjectID) (*models.ChatRoom, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *room
	return &copied, nil
}

func (r *fakeChatRepo) GetRoomsForUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatRoom, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.ChatRoom
	for _, room := range r.rooms {
		if room.ParticipantA == userID || room.ParticipantB == userID {
			copied := *room
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeChatRepo) InsertMessage(ctx context.Context, message *models.ChatMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = primitive.NewObjectID()
	message.CreatedAt = time.Now()
	copied := *message
	r.messages = append(r.messages, &copied)

	if room, ok := r.rooms[message.RoomID]; ok {
		if message.ReceiverID == room.ParticipantA {
			room.UnreadCountA++
		} else {
			room.UnreadCountB++
		}
	}
	return nil
}

func (r *fakeChatRepo) ListMessages(ctx context.Context, roomID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatMessage, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.ChatMessage
	for _, m := range r.messages {
		if m.RoomID == roomID {
			copied := *m
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeChatRepo) LastMessage(ctx context.Context, roomID primitive.ObjectID) (*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].RoomID == roomID {
			copied := *r.messages[i]
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeChatRepo) MarkRead(ctx context.Context, roomID, readerID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, ok := r.rooms[roomID]
	if !ok {
		return models.ErrNotFound
	}
	for _, m := range r.messages {
		if m.RoomID == roomID && m.ReceiverID == readerID {
			m.IsRead = true
		}
	}
	if readerID == room.ParticipantA {
		room.UnreadCountA = 0
	} else {
		room.UnreadCountB = 0
	}
	return nil
}

func TestGetOrCreateRoomResolvesPair(t *testing.T) {
	repo := newFakeChatRepo()
	service := NewChatService(repo, nil, testLogger())
	ctx := context.Background()

	a := primitive.NewObjectID()
	b := primitive.NewObjectID()

	first, err := service.GetOrCreateRoom(ctx, a, b)
	require.NoError(t, err)

	// Same pair in either order resolves to the same room.
	second, err := service.GetOrCreateRoom(ctx, b, a)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestSendMessageResolvesReceiver(t *testing.T) {
	repo := newFakeChatRepo()
	service := NewChatService(repo, nil, testLogger())
	ctx := context.Background()

	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	room, err := service.GetOrCreateRoom(ctx, a, b)
	require.NoError(t, err)

	message, err := service.SendMessage(ctx, room.ID, a, "namaste")
	require.NoError(t, err)

	assert.Equal(t, a, message.SenderID)
	assert.Equal(t, b, message.ReceiverID)
	assert.Equal(t, "namaste", message.Content)
}

func TestSendMessageRejectsEmptyAndOversized(t *testing.T) {
	repo := newFakeChatRepo()
	service := NewChatService(repo, nil, testLogger())
	ctx := context.Background()

	room, err := service.GetOrCreateRoom(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	require.NoError(t, err)

	_, err = service.SendMessage(ctx, room.ID, room.ParticipantA, "")
	assert.ErrorIs(t, err, models.ErrInvalidState)

	_, err = service.SendMessage(ctx, room.ID, room.ParticipantA, strings.Repeat("x", utils.MaxMessageLength+1))
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestSendMessageUnknownRoom(t *testing.T) {
	service := NewChatService(newFakeChatRepo(), nil, testLogger())

	_, err := service.SendMessage(context.Background(), primitive.NewObjectID(), primitive.NewObjectID(), "hello")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMarkReadClearsUnread(t *testing.T) {
	repo := newFakeChatRepo()
	service := NewChatService(repo, nil, testLogger())
	ctx := context.Background()

	a := primitive.NewObjectID()
	b := primitive.NewObjectID()
	room, err := service.GetOrCreateRoom(ctx, a, b)
	require.NoError(t, err)

	_, err = service.SendMessage(ctx, room.ID, a, "first")
	require.NoError(t, err)
	_, err = service.SendMessage(ctx, room.ID, a, "second")
	require.NoError(t, err)

	receiver := room.ParticipantB
	if receiver == a {
		receiver = room.ParticipantA
	}

	require.NoError(t, service.MarkRead(ctx, room.ID, receiver))

	messages, _, err := service.History(ctx, room.ID, nil)
	require.NoError(t, err)
	for _, m := range messages {
		assert.True(t, m.IsRead)
	}
}

func TestLastMessage(t *testing.T) {
	repo := newFakeChatRepo()
	service := NewChatService(repo, nil, testLogger())
	ctx := context.Background()

	room, err := service.GetOrCreateRoom(ctx, primitive.NewObjectID(), primitive.NewObjectID())
	require.NoError(t, err)

	_, err = service.LastMessage(ctx, room.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = service.SendMessage(ctx, room.ID, room.ParticipantA, "first")
	require.NoError(t, err)
	_, err = service.SendMessage(ctx, room.ID, room.ParticipantA, "latest")
	require.NoError(t, err)

	last, err := service.LastMessage(ctx, room.ID)
	require.NoError(t, err)
	assert.Equal(t, "latest", last.Content)
}
