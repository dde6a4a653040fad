package services

import (
	"context"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"
	"astro-online/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AstrologerService interface {
	Register(ctx context.Context, astrologer *models.Astrologer) (*models.Astrologer, error)
	GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Astrologer, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Astrologer, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error
	List(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error)
	ListByCategory(ctx context.Context, category string, params *utils.PaginationParams) ([]*models.Astrologer, int64, error)
}

type astrologerService struct {
	astrologerRepo interfaces.AstrologerRepository
	walletService  WalletService
	logger         *logger.Logger
}

func NewAstrologerService(
	astrologerRepo interfaces.AstrologerRepository,
	walletService WalletService,
	logger *logger.Logger,
) AstrologerService {
	return &astrologerService{
		astrologerRepo: astrologerRepo,
		walletService:  walletService,
		logger:         logger,
	}
}

func (s *astrologerService) Register(ctx context.Context, astrologer *models.Astrologer) (*models.Astrologer, error) {
	if err := s.astrologerRepo.Create(ctx, astrologer); err != nil {
		return nil, err
	}

	// The payout wallet exists from day one so a first settlement never
	// has to create it mid-transaction.
	if _, err := s.walletService.EnsureWallet(ctx, astrologer.ID, models.RoleAstrologer); err != nil {
		s.logger.WithError(err).
			WithField("astrologer_id", astrologer.ID.Hex()).
			Error("Failed to provision astrologer wallet")
		return nil, err
	}

	s.logger.WithField("astrologer_id", astrologer.ID.Hex()).Info("Astrologer registered")

	return astrologer, nil
}

func (s *astrologerService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Astrologer, error) {
	return s.astrologerRepo.GetByID(ctx, id)
}

func (s *astrologerService) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Astrologer, error) {
	return s.astrologerRepo.GetByUserID(ctx, userID)
}

func (s *astrologerService) UpdateProfile(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	// Presence and lifecycle flags move through the availability service
	// and soft delete, not blind profile updates.
	for _, key := range []string{"is_online", "is_busy", "is_deleted", "_id", "user_id"} {
		delete(updates, key)
	}

	return s.astrologerRepo.Update(ctx, id, updates)
}

func (s *astrologerService) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	return s.astrologerRepo.List(ctx, params)
}

func (s *astrologerService) ListByCategory(ctx context.Context, category string, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	return s.astrologerRepo.ListByCategory(ctx, category, params)
}
