package services

import (
	"context"
	"time"

	"astro-online/internal/config"
	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"
	"astro-online/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// SessionResult is what the HTTP layer returns for lifecycle calls that
// settle money.
type SessionResult struct {
	Session    *models.Session   `json:"session"`
	Settlement *SettlementResult `json:"settlement,omitempty"`
}

type SessionService interface {
	// StartSession begins an instant consultation: the astrologer must be
	// available and the customer wallet funded.
	StartSession(ctx context.Context, customerID, astrologerID primitive.ObjectID, sessionType models.SessionType) (*models.Session, error)

	// RequestSession files a pending request the astrologer can accept or
	// decline.
	RequestSession(ctx context.Context, customerID, astrologerID primitive.ObjectID, sessionType models.SessionType) (*models.Session, error)

	// RespondToRequest lets the named astrologer accept or decline a
	// pending request exactly once.
	RespondToRequest(ctx context.Context, sessionID, astrologerID primitive.ObjectID, accept bool) (*models.Session, error)

	// StartAccepted promotes an accepted request to ongoing, re-running
	// the availability and balance checks.
	StartAccepted(ctx context.Context, sessionID, customerID primitive.ObjectID) (*models.Session, error)

	// EndSession finishes an ongoing consultation and settles the charge
	// atomically. Either participant may call it.
	EndSession(ctx context.Context, sessionID, actorID primitive.ObjectID) (*SessionResult, error)

	// CancelRequest withdraws a pending or accepted request before it starts.
	CancelRequest(ctx context.Context, sessionID, customerID primitive.ObjectID) (*models.Session, error)

	GetSession(ctx context.Context, sessionID primitive.ObjectID) (*models.Session, error)
	ListCustomerSessions(ctx context.Context, customerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error)
	ListAstrologerSessions(ctx context.Context, astrologerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error)
	ListPendingRequests(ctx context.Context, astrologerID primitive.ObjectID) ([]*models.Session, error)

	// RunWatchdog force-ends sessions that exceeded the configured maximum
	// duration. Blocks until ctx is cancelled.
	RunWatchdog(ctx context.Context)
}

type sessionService struct {
	db              TxRunner
	sessionRepo     interfaces.SessionRepository
	astrologerRepo  interfaces.AstrologerRepository
	customerWallets interfaces.WalletRepository
	availability    AvailabilityService
	settlement      SettlementService
	notifications   NotificationService
	config          *config.SessionConfig
	logger          *logger.Logger
}

func NewSessionService(
	db TxRunner,
	sessionRepo interfaces.SessionRepository,
	astrologerRepo interfaces.AstrologerRepository,
	customerWallets interfaces.WalletRepository,
	availability AvailabilityService,
	settlement SettlementService,
	notifications NotificationService,
	config *config.SessionConfig,
	logger *logger.Logger,
) SessionService {
	return &sessionService{
		db:              db,
		sessionRepo:     sessionRepo,
		astrologerRepo:  astrologerRepo,
		customerWallets: customerWallets,
		availability:    availability,
		settlement:      settlement,
		notifications:   notifications,
		config:          config,
		logger:          logger,
	}
}

func (s *sessionService) StartSession(ctx context.Context, customerID, astrologerID primitive.ObjectID, sessionType models.SessionType) (*models.Session, error) {
	if !sessionType.Valid() {
		return nil, models.ErrInvalidState
	}

	astrologer, err := s.astrologerRepo.GetByID(ctx, astrologerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.availability.IsAvailable(ctx, astrologerID); err != nil {
		return nil, err
	}

	if err := s.checkFunds(ctx, customerID); err != nil {
		return nil, err
	}

	now := time.Now()
	session := &models.Session{
		CustomerID:   customerID,
		AstrologerID: astrologerID,
		SessionType:  sessionType,
		Status:       models.SessionStatusOngoing,
		StartedAt:    &now,
	}

	// The insert races against other customers; the unique index decides
	// the winner and Create surfaces the loss as ErrAstrologerBusy.
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	if err := s.availability.MarkBusy(ctx, astrologerID); err != nil {
		s.logger.WithError(err).WithSessionID(session.ID).Warn("Failed to mark astrologer busy")
	}

	s.notifySessionEvent(ctx, astrologer.UserID, "Consultation started",
		"A customer has started a "+string(sessionType)+" consultation with you", session)

	s.logger.WithSessionID(session.ID).
		WithField("astrologer_id", astrologerID.Hex()).
		WithField("session_type", sessionType).
		Info("Session started")

	return session, nil
}

func (s *sessionService) RequestSession(ctx context.Context, customerID, astrologerID primitive.ObjectID, sessionType models.SessionType) (*models.Session, error) {
	if !sessionType.Valid() {
		return nil, models.ErrInvalidState
	}

	astrologer, err := s.astrologerRepo.GetByID(ctx, astrologerID)
	if err != nil {
		return nil, err
	}
	if !astrologer.IsActive || !astrologer.IsOnline {
		return nil, models.ErrAstrologerOffline
	}

	session := &models.Session{
		CustomerID:   customerID,
		AstrologerID: astrologerID,
		SessionType:  sessionType,
		Status:       models.SessionStatusPending,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	s.notifySessionEvent(ctx, astrologer.UserID, "New consultation request",
		"You have a new "+string(sessionType)+" request", session)

	return session, nil
}

func (s *sessionService) RespondToRequest(ctx context.Context, sessionID, astrologerID primitive.ObjectID, accept bool) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.AstrologerID != astrologerID {
		return nil, models.ErrNotFound
	}

	to := models.SessionStatusDeclined
	title := "Request declined"
	if accept {
		to = models.SessionStatusAccepted
		title = "Request accepted"
	}

	updated, err := s.sessionRepo.TransitionStatus(ctx, sessionID, models.SessionStatusPending, to, nil)
	if err != nil {
		if err == models.ErrInvalidState {
			return nil, models.ErrAlreadyResponded
		}
		return nil, err
	}

	s.notifySessionEvent(ctx, updated.CustomerID, title,
		"The astrologer has responded to your consultation request", updated)

	return updated, nil
}

func (s *sessionService) StartAccepted(ctx context.Context, sessionID, customerID primitive.ObjectID) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CustomerID != customerID {
		return nil, models.ErrNotFound
	}

	// The astrologer may have gone offline or busy since accepting, and
	// the wallet may have drained. Same preconditions as an instant start.
	if _, err := s.availability.IsAvailable(ctx, session.AstrologerID); err != nil {
		return nil, err
	}
	if err := s.checkFunds(ctx, customerID); err != nil {
		return nil, err
	}

	now := time.Now()
	updated, err := s.sessionRepo.TransitionStatus(ctx, sessionID,
		models.SessionStatusAccepted, models.SessionStatusOngoing,
		map[string]interface{}{"started_at": now})
	if err != nil {
		return nil, err
	}

	if err := s.availability.MarkBusy(ctx, session.AstrologerID); err != nil {
		s.logger.WithError(err).WithSessionID(sessionID).Warn("Failed to mark astrologer busy")
	}

	astrologer, err := s.astrologerRepo.GetByID(ctx, session.AstrologerID)
	if err == nil {
		s.notifySessionEvent(ctx, astrologer.UserID, "Consultation started",
			"Your accepted consultation has started", updated)
	}

	return updated, nil
}

func (s *sessionService) EndSession(ctx context.Context, sessionID, actorID primitive.ObjectID) (*SessionResult, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CustomerID != actorID && session.AstrologerID != actorID {
		astrologer, err := s.astrologerRepo.GetByID(ctx, session.AstrologerID)
		if err != nil || astrologer.UserID != actorID {
			return nil, models.ErrNotFound
		}
	}

	result, err := s.endAndSettle(ctx, session)
	if err != nil {
		return nil, err
	}

	s.afterSettlement(ctx, result.Session)

	return result, nil
}

// endAndSettle flips the session to ended and runs the settlement inside one
// transaction. The conditional transition makes the whole thing exactly-once:
// a second concurrent end sees ErrInvalidState and no money moves twice.
func (s *sessionService) endAndSettle(ctx context.Context, session *models.Session) (*SessionResult, error) {
	astrologer, err := s.astrologerRepo.GetByID(ctx, session.AstrologerID)
	if err != nil {
		return nil, err
	}

	out, err := s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		now := time.Now()
		ended, err := s.sessionRepo.TransitionStatus(sessCtx, session.ID,
			models.SessionStatusOngoing, models.SessionStatusEnded,
			map[string]interface{}{"ended_at": now})
		if err != nil {
			return nil, err
		}

		settlement, err := s.settlement.Settle(sessCtx, ended, astrologer)
		if err != nil {
			return nil, err
		}

		return &SessionResult{Session: ended, Settlement: settlement}, nil
	})
	if err != nil {
		return nil, err
	}

	return out.(*SessionResult), nil
}

// afterSettlement handles the non-transactional followups of a settled end.
func (s *sessionService) afterSettlement(ctx context.Context, session *models.Session) {
	if err := s.availability.MarkFree(ctx, session.AstrologerID); err != nil {
		s.logger.WithError(err).WithSessionID(session.ID).Warn("Failed to mark astrologer free")
	}
	if err := s.astrologerRepo.IncrementTotalOrders(ctx, session.AstrologerID); err != nil {
		s.logger.WithError(err).WithSessionID(session.ID).Warn("Failed to bump order count")
	}

	s.notifySessionEvent(ctx, session.CustomerID, "Consultation ended",
		"Your consultation has ended", session)
	if astrologer, err := s.astrologerRepo.GetByID(ctx, session.AstrologerID); err == nil {
		s.notifySessionEvent(ctx, astrologer.UserID, "Consultation ended",
			"Your consultation has ended", session)
	}
}

func (s *sessionService) CancelRequest(ctx context.Context, sessionID, customerID primitive.ObjectID) (*models.Session, error) {
	session, err := s.sessionRepo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.CustomerID != customerID {
		return nil, models.ErrNotFound
	}

	from := session.Status
	if from != models.SessionStatusPending && from != models.SessionStatusAccepted {
		return nil, models.ErrInvalidState
	}

	return s.sessionRepo.TransitionStatus(ctx, sessionID, from, models.SessionStatusCancelled, nil)
}

func (s *sessionService) GetSession(ctx context.Context, sessionID primitive.ObjectID) (*models.Session, error) {
	return s.sessionRepo.GetByID(ctx, sessionID)
}

func (s *sessionService) ListCustomerSessions(ctx context.Context, customerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error) {
	return s.sessionRepo.ListByCustomer(ctx, customerID, params)
}

func (s *sessionService) ListAstrologerSessions(ctx context.Context, astrologerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error) {
	return s.sessionRepo.ListByAstrologer(ctx, astrologerID, params)
}

func (s *sessionService) ListPendingRequests(ctx context.Context, astrologerID primitive.ObjectID) ([]*models.Session, error) {
	return s.sessionRepo.ListPendingForAstrologer(ctx, astrologerID)
}

func (s *sessionService) RunWatchdog(ctx context.Context) {
	ticker := time.NewTicker(s.config.WatchdogInterval)
	defer ticker.Stop()

	s.logger.WithField("interval", s.config.WatchdogInterval).
		WithField("max_duration", s.config.MaxDuration).
		Info("Session watchdog running")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepStaleSessions(ctx)
		}
	}
}

func (s *sessionService) sweepStaleSessions(ctx context.Context) {
	cutoff := time.Now().Add(-s.config.MaxDuration)

	stale, err := s.sessionRepo.FindStaleOngoing(ctx, cutoff)
	if err != nil {
		s.logger.WithError(err).Error("Watchdog sweep failed")
		return
	}

	for _, session := range stale {
		result, err := s.endAndSettle(ctx, session)
		if err != nil {
			if err == models.ErrInvalidState {
				// Someone ended it between the sweep and the settle.
				continue
			}
			s.logger.WithError(err).WithSessionID(session.ID).Error("Watchdog failed to end session")
			continue
		}

		s.afterSettlement(ctx, result.Session)
		s.logger.WithSessionID(session.ID).Warn("Watchdog force-ended stale session")
	}
}

// checkFunds requires a strictly positive balance to start a consultation.
func (s *sessionService) checkFunds(ctx context.Context, customerID primitive.ObjectID) error {
	wallet, err := s.customerWallets.GetByOwner(ctx, customerID)
	if err == models.ErrNotFound {
		// Signup can predate the first top-up; no wallet means no funds.
		return models.ErrInsufficientFunds
	}
	if err != nil {
		return err
	}
	if !wallet.IsActive {
		return models.ErrWalletInactive
	}
	if wallet.Balance <= 0 {
		return models.ErrInsufficientFunds
	}
	return nil
}

func (s *sessionService) notifySessionEvent(ctx context.Context, userID primitive.ObjectID, title, message string, session *models.Session) {
	if s.notifications == nil {
		return
	}
	data := map[string]string{
		"session_id":   session.ID.Hex(),
		"session_type": string(session.SessionType),
		"status":       string(session.Status),
	}
	if err := s.notifications.Notify(ctx, userID, title, message, data); err != nil {
		s.logger.WithError(err).WithSessionID(session.ID).Warn("Failed to deliver session notification")
	}
}
