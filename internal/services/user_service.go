package services

import (
	"context"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error
	Deactivate(ctx context.Context, id primitive.ObjectID) error
}

type userService struct {
	userRepo interfaces.UserRepository
	logger   *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, logger *logger.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		logger:   logger,
	}
}

func (s *userService) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func (s *userService) UpdateProfile(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	for _, key := range []string{"_id", "role", "phone", "is_deleted"} {
		delete(updates, key)
	}
	return s.userRepo.Update(ctx, id, updates)
}

func (s *userService) UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return s.userRepo.UpdateFCMToken(ctx, id, token)
}

func (s *userService) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	s.logger.WithUserID(id).Info("Deactivating user")
	return s.userRepo.Delete(ctx, id)
}
