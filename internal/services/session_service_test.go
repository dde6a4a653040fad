package services

import (
	"context"
	"testing"
	"time"

	"astro-online/internal/config"
	"astro-online/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type sessionFixture struct {
	service         SessionService
	sessionRepo     *fakeSessionRepo
	astrologerRepo  *fakeAstrologerRepo
	customerWallets *fakeWalletRepo
	payoutWallets   *fakeWalletRepo
	transactionRepo *fakeTransactionRepo
	notifier        *fakeNotifier
	astrologer      *models.Astrologer
	customerID      primitive.ObjectID
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()

	log := testLogger()
	sessionRepo := newFakeSessionRepo()
	astrologerRepo := newFakeAstrologerRepo()
	customerWallets := newFakeWalletRepo()
	payoutWallets := newFakeWalletRepo()
	transactionRepo := newFakeTransactionRepo()
	notifier := &fakeNotifier{}

	astrologer := astrologerRepo.seed(&models.Astrologer{
		UserID:          primitive.NewObjectID(),
		Name:            "Pandit Sharma",
		ChatCharge:      100,
		AudioCallCharge: 150,
		VideoCallCharge: 200,
		IsActive:        true,
		IsOnline:        true,
	})

	customerID := primitive.NewObjectID()
	customerWallets.seed(customerID, 500)
	payoutWallets.seed(astrologer.ID, 0)

	availability := NewAvailabilityService(astrologerRepo, sessionRepo, nil, log)
	settlement := NewSettlementService(customerWallets, payoutWallets, transactionRepo, log)

	service := NewSessionService(
		&fakeTxRunner{},
		sessionRepo,
		astrologerRepo,
		customerWallets,
		availability,
		settlement,
		notifier,
		&config.SessionConfig{MaxDuration: 2 * time.Hour, WatchdogInterval: time.Minute},
		log,
	)

	return &sessionFixture{
		service:         service,
		sessionRepo:     sessionRepo,
		astrologerRepo:  astrologerRepo,
		customerWallets: customerWallets,
		payoutWallets:   payoutWallets,
		transactionRepo: transactionRepo,
		notifier:        notifier,
		astrologer:      astrologer,
		customerID:      customerID,
	}
}

func TestStartSession(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusOngoing, session.Status)
	assert.NotNil(t, session.StartedAt)
	assert.Equal(t, f.customerID, session.CustomerID)

	stored, err := f.astrologerRepo.GetByID(ctx, f.astrologer.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsBusy)
}

func TestStartSessionRejectsInvalidType(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.service.StartSession(context.Background(), f.customerID, f.astrologer.ID, "palm_reading")
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestStartSessionBusyAstrologer(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	_, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	otherCustomer := primitive.NewObjectID()
	f.customerWallets.seed(otherCustomer, 300)

	_, err = f.service.StartSession(ctx, otherCustomer, f.astrologer.ID, models.SessionTypeChat)
	assert.ErrorIs(t, err, models.ErrAstrologerBusy)
}

func TestStartSessionOfflineAstrologer(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.astrologerRepo.SetOnline(ctx, f.astrologer.ID, false))

	_, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	assert.ErrorIs(t, err, models.ErrAstrologerOffline)
}

func TestStartSessionInsufficientFunds(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	broke := primitive.NewObjectID()
	f.customerWallets.seed(broke, 0)

	_, err := f.service.StartSession(ctx, broke, f.astrologer.ID, models.SessionTypeChat)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
}

func TestStartSessionWithoutWallet(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	// A customer who never topped up has no wallet row; that reads as
	// empty, not as a missing astrologer.
	_, err := f.service.StartSession(ctx, primitive.NewObjectID(), f.astrologer.ID, models.SessionTypeChat)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
}

func TestStartSessionUnknownAstrologer(t *testing.T) {
	f := newSessionFixture(t)

	_, err := f.service.StartSession(context.Background(), f.customerID, primitive.NewObjectID(), models.SessionTypeChat)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestEndSessionSettlesExactlyOnce(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	result, err := f.service.EndSession(ctx, session.ID, f.customerID)
	require.NoError(t, err)

	assert.Equal(t, models.SessionStatusEnded, result.Session.Status)
	require.NotNil(t, result.Settlement)
	assert.Equal(t, 100.0, result.Settlement.Charge)
	assert.Equal(t, 100.0, result.Settlement.AmountDebited)
	assert.False(t, result.Settlement.Capped)

	assert.Equal(t, 400.0, f.customerWallets.balance(f.customerID))
	assert.Equal(t, 100.0, f.payoutWallets.balance(f.astrologer.ID))

	// The second end must not move money again.
	_, err = f.service.EndSession(ctx, session.ID, f.customerID)
	assert.ErrorIs(t, err, models.ErrInvalidState)
	assert.Equal(t, 400.0, f.customerWallets.balance(f.customerID))

	stored, err := f.astrologerRepo.GetByID(ctx, f.astrologer.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBusy)
	assert.Equal(t, 1, stored.TotalOrders)
}

func TestEndSessionWritesLedgerPair(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeAudioCall)
	require.NoError(t, err)

	_, err = f.service.EndSession(ctx, session.ID, f.customerID)
	require.NoError(t, err)

	txns, err := f.transactionRepo.ListBySession(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, txns, 2)

	var debited, credited float64
	for _, txn := range txns {
		assert.Equal(t, models.TransactionTypeAudioCall, txn.Type)
		if txn.IsCredit {
			credited += txn.Amount
		} else {
			debited += txn.Amount
		}
	}
	assert.Equal(t, debited, credited)
	assert.Equal(t, 150.0, debited)
}

func TestEndSessionCapsAtBalance(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	poor := primitive.NewObjectID()
	f.customerWallets.seed(poor, 50)

	session, err := f.service.StartSession(ctx, poor, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	result, err := f.service.EndSession(ctx, session.ID, poor)
	require.NoError(t, err)

	assert.True(t, result.Settlement.Capped)
	assert.Equal(t, 100.0, result.Settlement.Charge)
	assert.Equal(t, 50.0, result.Settlement.AmountDebited)
	assert.Equal(t, 0.0, f.customerWallets.balance(poor))
	assert.Equal(t, 50.0, f.payoutWallets.balance(f.astrologer.ID))
}

func TestEndSessionByAstrologerUser(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	_, err = f.service.EndSession(ctx, session.ID, f.astrologer.UserID)
	assert.NoError(t, err)
}

func TestEndSessionByStranger(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	_, err = f.service.EndSession(ctx, session.ID, primitive.NewObjectID())
	assert.ErrorIs(t, err, models.ErrNotFound)

	// Still ongoing and unsettled.
	assert.Equal(t, 500.0, f.customerWallets.balance(f.customerID))
}

func TestRequestRespondStartFlow(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.RequestSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeVideoCall)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusPending, session.Status)
	assert.Nil(t, session.StartedAt)

	accepted, err := f.service.RespondToRequest(ctx, session.ID, f.astrologer.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusAccepted, accepted.Status)

	// Responding twice is rejected.
	_, err = f.service.RespondToRequest(ctx, session.ID, f.astrologer.ID, true)
	assert.ErrorIs(t, err, models.ErrAlreadyResponded)

	started, err := f.service.StartAccepted(ctx, session.ID, f.customerID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusOngoing, started.Status)
	assert.NotNil(t, started.StartedAt)
}

func TestRespondDecline(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.RequestSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	declined, err := f.service.RespondToRequest(ctx, session.ID, f.astrologer.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusDeclined, declined.Status)

	// A declined request cannot be started.
	_, err = f.service.StartAccepted(ctx, session.ID, f.customerID)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestRespondWrongAstrologer(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.RequestSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	_, err = f.service.RespondToRequest(ctx, session.ID, primitive.NewObjectID(), true)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestRequestSessionOfflineAstrologer(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	require.NoError(t, f.astrologerRepo.SetOnline(ctx, f.astrologer.ID, false))

	_, err := f.service.RequestSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	assert.ErrorIs(t, err, models.ErrAstrologerOffline)
}

func TestStartAcceptedReChecksFunds(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.RequestSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)
	_, err = f.service.RespondToRequest(ctx, session.ID, f.astrologer.ID, true)
	require.NoError(t, err)

	// Wallet drained between acceptance and start.
	_, err = f.customerWallets.DebitUpTo(ctx, f.customerID, 500)
	require.NoError(t, err)

	_, err = f.service.StartAccepted(ctx, session.ID, f.customerID)
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
}

func TestCancelRequest(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.RequestSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	cancelled, err := f.service.CancelRequest(ctx, session.ID, f.customerID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCancelled, cancelled.Status)
}

func TestCancelOngoingRejected(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	_, err = f.service.CancelRequest(ctx, session.ID, f.customerID)
	assert.ErrorIs(t, err, models.ErrInvalidState)
}

func TestWatchdogForceEndsStaleSessions(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	// Backdate the start past the maximum duration.
	f.sessionRepo.mu.Lock()
	stale := time.Now().Add(-3 * time.Hour)
	f.sessionRepo.sessions[session.ID].StartedAt = &stale
	f.sessionRepo.mu.Unlock()

	f.service.(*sessionService).sweepStaleSessions(ctx)

	ended, err := f.service.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusEnded, ended.Status)
	assert.Equal(t, 400.0, f.customerWallets.balance(f.customerID))

	stored, err := f.astrologerRepo.GetByID(ctx, f.astrologer.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsBusy)
}

func TestWatchdogLeavesFreshSessionsAlone(t *testing.T) {
	f := newSessionFixture(t)
	ctx := context.Background()

	session, err := f.service.StartSession(ctx, f.customerID, f.astrologer.ID, models.SessionTypeChat)
	require.NoError(t, err)

	f.service.(*sessionService).sweepStaleSessions(ctx)

	current, err := f.service.GetSession(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusOngoing, current.Status)
}
