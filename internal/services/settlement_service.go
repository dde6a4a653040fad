package services

import (
	"context"
	"fmt"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"
	"astro-online/pkg/logger"
)

// SettlementResult records what one settlement actually moved.
type SettlementResult struct {
	SessionID     string  `json:"session_id"`
	Charge        float64 `json:"charge"`
	AmountDebited float64 `json:"amount_debited"`
	Capped        bool    `json:"capped"`
	Duration      string  `json:"duration"`
}

// SettlementService moves the session charge from the customer wallet to the
// astrologer wallet and writes the ledger rows. Settle is designed to run
// inside the transaction that also flips the session to ended, so the money
// movement and the status change commit or abort together.
type SettlementService interface {
	Settle(ctx context.Context, session *models.Session, astrologer *models.Astrologer) (*SettlementResult, error)
}

type settlementService struct {
	customerWallets   interfaces.WalletRepository
	astrologerWallets interfaces.WalletRepository
	transactionRepo   interfaces.TransactionRepository
	logger            *logger.Logger
}

func NewSettlementService(
	customerWallets interfaces.WalletRepository,
	astrologerWallets interfaces.WalletRepository,
	transactionRepo interfaces.TransactionRepository,
	logger *logger.Logger,
) SettlementService {
	return &settlementService{
		customerWallets:   customerWallets,
		astrologerWallets: astrologerWallets,
		transactionRepo:   transactionRepo,
		logger:            logger,
	}
}

func (s *settlementService) Settle(ctx context.Context, session *models.Session, astrologer *models.Astrologer) (*SettlementResult, error) {
	charge := astrologer.ChargeFor(session.SessionType)
	if charge < 0 {
		return nil, fmt.Errorf("invalid charge %.2f for session type %s", charge, session.SessionType)
	}

	duration := utils.FormatDuration(session.Duration())

	// The charge is capped at whatever the customer still has. The session
	// always ends; a shortfall reduces the astrologer's payout instead of
	// leaving the consultation stuck.
	debited, err := s.customerWallets.DebitUpTo(ctx, session.CustomerID, charge)
	if err != nil {
		return nil, fmt.Errorf("failed to debit customer: %w", err)
	}

	if debited > 0 {
		if _, err := s.astrologerWallets.Credit(ctx, session.AstrologerID, debited); err != nil {
			return nil, fmt.Errorf("failed to credit astrologer: %w", err)
		}
	}

	txnType := models.TransactionTypeForSession(session.SessionType)
	sessionID := session.ID
	customerID := session.CustomerID
	astrologerID := session.AstrologerID

	debitTxn := &models.WalletTransaction{
		Amount:           debited,
		Type:             txnType,
		IsCredit:         false,
		FromUserID:       &customerID,
		ToUserID:         &astrologerID,
		CounterpartyName: astrologer.Name,
		SessionID:        &sessionID,
		Duration:         duration,
	}
	if err := s.transactionRepo.Create(ctx, debitTxn); err != nil {
		return nil, fmt.Errorf("failed to record debit: %w", err)
	}

	creditTxn := &models.WalletTransaction{
		Amount:     debited,
		Type:       txnType,
		IsCredit:   true,
		FromUserID: &customerID,
		ToUserID:   &astrologerID,
		SessionID:  &sessionID,
		Duration:   duration,
	}
	if err := s.transactionRepo.Create(ctx, creditTxn); err != nil {
		return nil, fmt.Errorf("failed to record credit: %w", err)
	}

	result := &SettlementResult{
		SessionID:     session.ID.Hex(),
		Charge:        charge,
		AmountDebited: debited,
		Capped:        debited < charge,
		Duration:      duration,
	}

	log := s.logger.WithSessionID(session.ID).
		WithField("charge", charge).
		WithField("debited", debited)
	if result.Capped {
		log.Warn("Settlement capped at available balance")
	} else {
		log.Info("Session settled")
	}

	return result, nil
}
