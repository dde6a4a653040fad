package services

import (
	"context"
	"time"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"
	"astro-online/pkg/logger"
	"astro-online/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ChatService interface {
	GetOrCreateRoom(ctx context.Context, a, b primitive.ObjectID) (*models.ChatRoom, error)
	ListRooms(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatRoom, int64, error)
	History(ctx context.Context, roomID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatMessage, int64, error)
	LastMessage(ctx context.Context, roomID primitive.ObjectID) (*models.ChatMessage, error)
	MarkRead(ctx context.Context, roomID, readerID primitive.ObjectID) error
	SendMessage(ctx context.Context, roomID, senderID primitive.ObjectID, content string) (*models.ChatMessage, error)

	// HandleInbound is the hub's delegate for chat frames arriving over a
	// room socket.
	HandleInbound(client *websocket.Client, msg *websocket.Envelope)
}

type chatService struct {
	chatRepo interfaces.ChatRepository
	hub      *websocket.Hub
	logger   *logger.Logger
}

func NewChatService(
	chatRepo interfaces.ChatRepository,
	hub *websocket.Hub,
	logger *logger.Logger,
) ChatService {
	return &chatService{
		chatRepo: chatRepo,
		hub:      hub,
		logger:   logger,
	}
}

func (s *chatService) GetOrCreateRoom(ctx context.Context, a, b primitive.ObjectID) (*models.ChatRoom, error) {
	return s.chatRepo.GetOrCreateRoom(ctx, a, b)
}

func (s *chatService) ListRooms(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatRoom, int64, error) {
	return s.chatRepo.GetRoomsForUser(ctx, userID, params)
}

func (s *chatService) History(ctx context.Context, roomID primitive.ObjectID, params *utils.PaginationParams) ([]*models.ChatMessage, int64, error) {
	return s.chatRepo.ListMessages(ctx, roomID, params)
}

func (s *chatService) LastMessage(ctx context.Context, roomID primitive.ObjectID) (*models.ChatMessage, error) {
	return s.chatRepo.LastMessage(ctx, roomID)
}

func (s *chatService) MarkRead(ctx context.Context, roomID, readerID primitive.ObjectID) error {
	if err := s.chatRepo.MarkRead(ctx, roomID, readerID); err != nil {
		return err
	}

	s.broadcastReadUpdate(roomID, readerID)

	return nil
}

func (s *chatService) SendMessage(ctx context.Context, roomID, senderID primitive.ObjectID, content string) (*models.ChatMessage, error) {
	if content == "" || len(content) > utils.MaxMessageLength {
		return nil, models.ErrInvalidState
	}

	room, err := s.chatRepo.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	receiverID := room.ParticipantA
	if receiverID == senderID {
		receiverID = room.ParticipantB
	}

	message := &models.ChatMessage{
		RoomID:     roomID,
		SenderID:   senderID,
		ReceiverID: receiverID,
		Content:    content,
	}
	if err := s.chatRepo.InsertMessage(ctx, message); err != nil {
		return nil, err
	}

	s.broadcastMessage(message)

	return message, nil
}

// HandleInbound dispatches a client frame. Supported actions are "send"
// (persist and broadcast a message) and "read" (mark the room read and tell
// the other side).
func (s *chatService) HandleInbound(client *websocket.Client, msg *websocket.Envelope) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	roomID, err := primitive.ObjectIDFromHex(msg.RoomID)
	if err != nil {
		s.logger.WithField("room_id", msg.RoomID).Warn("Chat frame with bad room id")
		return
	}

	switch msg.Action {
	case "send":
		content, _ := msg.Data["content"].(string)
		if _, err := s.SendMessage(ctx, roomID, client.UserID, content); err != nil {
			s.logger.WithError(err).
				WithUserID(client.UserID).
				WithField("room_id", msg.RoomID).
				Warn("Failed to send chat message")
		}

	case "read":
		if err := s.MarkRead(ctx, roomID, client.UserID); err != nil {
			s.logger.WithError(err).
				WithUserID(client.UserID).
				WithField("room_id", msg.RoomID).
				Warn("Failed to mark chat read")
		}

	default:
		s.logger.WithField("action", msg.Action).Debug("Ignoring unknown chat action")
	}
}

func (s *chatService) broadcastMessage(message *models.ChatMessage) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(message.RoomID.Hex(), websocket.Envelope{
		Type:   "message",
		RoomID: message.RoomID.Hex(),
		UserID: message.SenderID,
		Data: map[string]interface{}{
			"id":          message.ID.Hex(),
			"sender_id":   message.SenderID.Hex(),
			"receiver_id": message.ReceiverID.Hex(),
			"content":     message.Content,
			"created_at":  message.CreatedAt.Format(time.RFC3339),
		},
	})
}

func (s *chatService) broadcastReadUpdate(roomID, readerID primitive.ObjectID) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(roomID.Hex(), websocket.Envelope{
		Type:   "read_update",
		RoomID: roomID.Hex(),
		UserID: readerID,
		Data: map[string]interface{}{
			"reader_id": readerID.Hex(),
			"read_at":   time.Now().Format(time.RFC3339),
		},
	})
}
