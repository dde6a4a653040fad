package services

import (
	"context"
	"time"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"
	"astro-online/pkg/logger"
	"astro-online/pkg/push"
	"astro-online/pkg/websocket"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationService persists notifications and fans them out over the
// websocket hub and FCM. Socket and push delivery are best effort; the
// database row is the durable copy.
type NotificationService interface {
	Notify(ctx context.Context, userID primitive.ObjectID, title, message string, data map[string]string) error
	List(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, id primitive.ObjectID) error
	MarkAllRead(ctx context.Context, userID primitive.ObjectID) error
	CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

type notificationService struct {
	notificationRepo interfaces.NotificationRepository
	userRepo         interfaces.UserRepository
	hub              *websocket.Hub
	pushProvider     push.PushProvider
	logger           *logger.Logger
}

func NewNotificationService(
	notificationRepo interfaces.NotificationRepository,
	userRepo interfaces.UserRepository,
	hub *websocket.Hub,
	pushProvider push.PushProvider,
	logger *logger.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		hub:              hub,
		pushProvider:     pushProvider,
		logger:           logger,
	}
}

func (s *notificationService) Notify(ctx context.Context, userID primitive.ObjectID, title, message string, data map[string]string) error {
	notification := &models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Data:    data,
	}

	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return err
	}

	if s.hub != nil {
		envelope := websocket.Envelope{
			Type:      "notification",
			UserID:    userID,
			Timestamp: time.Now().Unix(),
			Data: map[string]interface{}{
				"id":      notification.ID.Hex(),
				"title":   title,
				"message": message,
				"data":    data,
			},
		}
		s.hub.SendToUser(userID, envelope)
	}

	s.sendPush(ctx, userID, title, message, data)

	return nil
}

func (s *notificationService) sendPush(ctx context.Context, userID primitive.ObjectID, title, message string, data map[string]string) {
	if s.pushProvider == nil {
		return
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user.FCMToken == "" {
		return
	}

	_, err = s.pushProvider.SendNotification(ctx, &push.NotificationRequest{
		Token: user.FCMToken,
		Title: title,
		Body:  message,
		Data:  data,
	})
	if err != nil {
		s.logger.WithError(err).WithUserID(userID).Warn("Push delivery failed")
	}
}

func (s *notificationService) List(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	return s.notificationRepo.ListByUser(ctx, userID, params)
}

func (s *notificationService) MarkRead(ctx context.Context, id primitive.ObjectID) error {
	return s.notificationRepo.MarkRead(ctx, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error {
	return s.notificationRepo.MarkAllRead(ctx, userID)
}

func (s *notificationService) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.notificationRepo.CountUnread(ctx, userID)
}
