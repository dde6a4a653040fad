package services

import (
	"context"
	"fmt"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"
	"astro-online/pkg/cache"
	"astro-online/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AvailabilityService tracks which astrologers can accept a consultation
// right now. The online and busy flags are a denormalized view for fast
// listing; the sessions collection stays the source of truth for who is
// actually in a consultation.
type AvailabilityService interface {
	SetOnline(ctx context.Context, astrologerID primitive.ObjectID) error
	SetOffline(ctx context.Context, astrologerID primitive.ObjectID) error
	MarkBusy(ctx context.Context, astrologerID primitive.ObjectID) error
	MarkFree(ctx context.Context, astrologerID primitive.ObjectID) error

	// IsAvailable reports whether the astrologer is online, not busy, and
	// has no ongoing session on record.
	IsAvailable(ctx context.Context, astrologerID primitive.ObjectID) (bool, error)

	ListOnline(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error)
}

type availabilityService struct {
	astrologerRepo interfaces.AstrologerRepository
	sessionRepo    interfaces.SessionRepository
	cache          *cache.RedisCache
	logger         *logger.Logger
}

func NewAvailabilityService(
	astrologerRepo interfaces.AstrologerRepository,
	sessionRepo interfaces.SessionRepository,
	cache *cache.RedisCache,
	logger *logger.Logger,
) AvailabilityService {
	return &availabilityService{
		astrologerRepo: astrologerRepo,
		sessionRepo:    sessionRepo,
		cache:          cache,
		logger:         logger,
	}
}

func (s *availabilityService) SetOnline(ctx context.Context, astrologerID primitive.ObjectID) error {
	if err := s.astrologerRepo.SetOnline(ctx, astrologerID, true); err != nil {
		return err
	}

	s.setFlag(ctx, utils.CacheKeyOnlineAstrologer, astrologerID, true)
	s.logger.WithField("astrologer_id", astrologerID.Hex()).Info("Astrologer online")

	return nil
}

func (s *availabilityService) SetOffline(ctx context.Context, astrologerID primitive.ObjectID) error {
	// Refuse to go offline mid-consultation; the session has to end first
	// so the settlement runs.
	if _, err := s.sessionRepo.GetOngoingByAstrologer(ctx, astrologerID); err == nil {
		return models.ErrAstrologerBusy
	} else if err != models.ErrNotFound {
		return err
	}

	if err := s.astrologerRepo.SetOnline(ctx, astrologerID, false); err != nil {
		return err
	}

	s.setFlag(ctx, utils.CacheKeyOnlineAstrologer, astrologerID, false)
	s.setFlag(ctx, utils.CacheKeyBusyAstrologer, astrologerID, false)
	s.logger.WithField("astrologer_id", astrologerID.Hex()).Info("Astrologer offline")

	return nil
}

func (s *availabilityService) MarkBusy(ctx context.Context, astrologerID primitive.ObjectID) error {
	if err := s.astrologerRepo.SetBusy(ctx, astrologerID, true); err != nil {
		return err
	}
	s.setFlag(ctx, utils.CacheKeyBusyAstrologer, astrologerID, true)
	return nil
}

func (s *availabilityService) MarkFree(ctx context.Context, astrologerID primitive.ObjectID) error {
	if err := s.astrologerRepo.SetBusy(ctx, astrologerID, false); err != nil {
		return err
	}
	s.setFlag(ctx, utils.CacheKeyBusyAstrologer, astrologerID, false)
	return nil
}

func (s *availabilityService) IsAvailable(ctx context.Context, astrologerID primitive.ObjectID) (bool, error) {
	astrologer, err := s.astrologerRepo.GetByID(ctx, astrologerID)
	if err != nil {
		return false, err
	}

	if !astrologer.IsActive || !astrologer.IsOnline {
		return false, models.ErrAstrologerOffline
	}
	if astrologer.IsBusy {
		return false, models.ErrAstrologerBusy
	}

	// The flags can lag behind reality; the ongoing-session check is
	// authoritative.
	if _, err := s.sessionRepo.GetOngoingByAstrologer(ctx, astrologerID); err == nil {
		return false, models.ErrAstrologerBusy
	} else if err != models.ErrNotFound {
		return false, err
	}

	return true, nil
}

func (s *availabilityService) ListOnline(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	return s.astrologerRepo.ListOnline(ctx, params)
}

func (s *availabilityService) setFlag(ctx context.Context, keyFormat string, astrologerID primitive.ObjectID, value bool) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf(keyFormat, astrologerID.Hex())
	if err := s.cache.Set(ctx, key, value, 0); err != nil {
		s.logger.WithError(err).WithField("cache_key", key).Warn("Failed to update presence flag")
	}
}
