package services

import (
	"context"
	"testing"
	"time"

	"astro-online/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newAvailabilityFixture() (AvailabilityService, *fakeAstrologerRepo, *fakeSessionRepo, *models.Astrologer) {
	astrologerRepo := newFakeAstrologerRepo()
	sessionRepo := newFakeSessionRepo()

	astrologer := astrologerRepo.seed(&models.Astrologer{
		UserID:   primitive.NewObjectID(),
		Name:     "Pandit Sharma",
		IsActive: true,
		IsOnline: true,
	})

	service := NewAvailabilityService(astrologerRepo, sessionRepo, nil, testLogger())
	return service, astrologerRepo, sessionRepo, astrologer
}

func TestIsAvailable(t *testing.T) {
	service, _, _, astrologer := newAvailabilityFixture()

	available, err := service.IsAvailable(context.Background(), astrologer.ID)
	require.NoError(t, err)
	assert.True(t, available)
}

func TestIsAvailableOffline(t *testing.T) {
	service, astrologerRepo, _, astrologer := newAvailabilityFixture()
	ctx := context.Background()

	require.NoError(t, astrologerRepo.SetOnline(ctx, astrologer.ID, false))

	_, err := service.IsAvailable(ctx, astrologer.ID)
	assert.ErrorIs(t, err, models.ErrAstrologerOffline)
}

func TestIsAvailableBusyFlag(t *testing.T) {
	service, astrologerRepo, _, astrologer := newAvailabilityFixture()
	ctx := context.Background()

	require.NoError(t, astrologerRepo.SetBusy(ctx, astrologer.ID, true))

	_, err := service.IsAvailable(ctx, astrologer.ID)
	assert.ErrorIs(t, err, models.ErrAstrologerBusy)
}

func TestIsAvailableTrustsSessionRecordOverFlag(t *testing.T) {
	service, _, sessionRepo, astrologer := newAvailabilityFixture()
	ctx := context.Background()

	// Busy flag lagging behind: flag says free, session record says busy.
	now := time.Now()
	require.NoError(t, sessionRepo.Create(ctx, &models.Session{
		CustomerID:   primitive.NewObjectID(),
		AstrologerID: astrologer.ID,
		SessionType:  models.SessionTypeChat,
		Status:       models.SessionStatusOngoing,
		StartedAt:    &now,
	}))

	_, err := service.IsAvailable(ctx, astrologer.ID)
	assert.ErrorIs(t, err, models.ErrAstrologerBusy)
}

func TestIsAvailableUnknownAstrologer(t *testing.T) {
	service, _, _, _ := newAvailabilityFixture()

	_, err := service.IsAvailable(context.Background(), primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetOfflineRefusedMidConsultation(t *testing.T) {
	service, astrologerRepo, sessionRepo, astrologer := newAvailabilityFixture()
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, sessionRepo.Create(ctx, &models.Session{
		CustomerID:   primitive.NewObjectID(),
		AstrologerID: astrologer.ID,
		SessionType:  models.SessionTypeChat,
		Status:       models.SessionStatusOngoing,
		StartedAt:    &now,
	}))

	err := service.SetOffline(ctx, astrologer.ID)
	assert.ErrorIs(t, err, models.ErrAstrologerBusy)

	stored, err := astrologerRepo.GetByID(ctx, astrologer.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsOnline)
}

func TestMarkBusyAndFree(t *testing.T) {
	service, astrologerRepo, _, astrologer := newAvailabilityFixture()
	ctx := context.Background()

	require.NoError(t, service.MarkBusy(ctx, astrologer.ID))
	stored, _ := astrologerRepo.GetByID(ctx, astrologer.ID)
	assert.True(t, stored.IsBusy)

	require.NoError(t, service.MarkFree(ctx, astrologer.ID))
	stored, _ = astrologerRepo.GetByID(ctx, astrologer.ID)
	assert.False(t, stored.IsBusy)
}
