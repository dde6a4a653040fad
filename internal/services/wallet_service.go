package services

import (
	"context"
	"fmt"

	"astro-online/internal/config"
	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"
	"astro-online/pkg/logger"
	"astro-online/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TopUpOrder is handed to the client so it can drive the payment gateway
// checkout, then confirm with the gateway's payment id and signature.
type TopUpOrder struct {
	OrderID  string  `json:"order_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Provider string  `json:"provider"`
}

type WalletService interface {
	// EnsureWallet creates the actor's wallet on first touch.
	EnsureWallet(ctx context.Context, ownerID primitive.ObjectID, role models.UserRole) (*models.Wallet, error)

	GetBalance(ctx context.Context, ownerID primitive.ObjectID, role models.UserRole) (*models.Wallet, error)

	// InitiateTopUp creates a gateway order for the amount.
	InitiateTopUp(ctx context.Context, userID primitive.ObjectID, amount float64) (*TopUpOrder, error)

	// ConfirmTopUp verifies the gateway payment and credits the wallet.
	ConfirmTopUp(ctx context.Context, userID primitive.ObjectID, orderID, paymentID, signature string) (*models.WalletTransaction, error)

	// SendMoney moves funds between two customer wallets.
	SendMoney(ctx context.Context, fromUserID, toUserID primitive.ObjectID, amount float64) (*models.WalletTransaction, error)

	ListTransactions(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.WalletTransaction, int64, error)
	ListSessionTransactions(ctx context.Context, sessionID primitive.ObjectID) ([]*models.WalletTransaction, error)
}

type walletService struct {
	db                TxRunner
	customerWallets   interfaces.WalletRepository
	astrologerWallets interfaces.WalletRepository
	transactionRepo   interfaces.TransactionRepository
	userRepo          interfaces.UserRepository
	astrologerRepo    interfaces.AstrologerRepository
	paymentProvider   payment.PaymentProvider
	config            *config.PaymentConfig
	logger            *logger.Logger
}

func NewWalletService(
	db TxRunner,
	customerWallets interfaces.WalletRepository,
	astrologerWallets interfaces.WalletRepository,
	transactionRepo interfaces.TransactionRepository,
	userRepo interfaces.UserRepository,
	astrologerRepo interfaces.AstrologerRepository,
	paymentProvider payment.PaymentProvider,
	config *config.PaymentConfig,
	logger *logger.Logger,
) WalletService {
	return &walletService{
		db:                db,
		customerWallets:   customerWallets,
		astrologerWallets: astrologerWallets,
		transactionRepo:   transactionRepo,
		userRepo:          userRepo,
		astrologerRepo:    astrologerRepo,
		paymentProvider:   paymentProvider,
		config:            config,
		logger:            logger,
	}
}

func (s *walletService) repoFor(role models.UserRole) interfaces.WalletRepository {
	if role == models.RoleAstrologer {
		return s.astrologerWallets
	}
	return s.customerWallets
}

func (s *walletService) EnsureWallet(ctx context.Context, ownerID primitive.ObjectID, role models.UserRole) (*models.Wallet, error) {
	repo := s.repoFor(role)

	wallet, err := repo.GetByOwner(ctx, ownerID)
	if err == nil {
		return wallet, nil
	}
	if err != models.ErrNotFound {
		return nil, err
	}

	wallet = &models.Wallet{
		OwnerID:  ownerID,
		Currency: s.config.Currency,
	}
	if err := repo.Create(ctx, wallet); err != nil {
		return nil, err
	}

	return wallet, nil
}

func (s *walletService) GetBalance(ctx context.Context, ownerID primitive.ObjectID, role models.UserRole) (*models.Wallet, error) {
	return s.repoFor(role).GetByOwner(ctx, ownerID)
}

func (s *walletService) InitiateTopUp(ctx context.Context, userID primitive.ObjectID, amount float64) (*TopUpOrder, error) {
	if amount < utils.MinTopUpAmount || amount > utils.MaxTopUpAmount {
		return nil, fmt.Errorf("top-up amount %.2f out of range", amount)
	}

	order, err := s.paymentProvider.CreateOrder(ctx, &payment.OrderRequest{
		Amount:   amount,
		Currency: s.config.Currency,
		Receipt:  utils.GenerateTransactionReference(),
		Notes: map[string]string{
			"user_id": userID.Hex(),
			"purpose": "wallet_top_up",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create payment order: %w", err)
	}

	return &TopUpOrder{
		OrderID:  order.OrderID,
		Amount:   amount,
		Currency: order.Currency,
		Provider: s.config.DefaultProvider,
	}, nil
}

func (s *walletService) ConfirmTopUp(ctx context.Context, userID primitive.ObjectID, orderID, paymentID, signature string) (*models.WalletTransaction, error) {
	verification, err := s.paymentProvider.VerifyPayment(ctx, &payment.VerificationRequest{
		OrderID:   orderID,
		PaymentID: paymentID,
		Signature: signature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to verify payment: %w", err)
	}
	if !verification.Verified {
		return nil, fmt.Errorf("%s: %s", utils.ErrPaymentFailed, verification.Status)
	}

	if _, err := s.EnsureWallet(ctx, userID, models.RoleCustomer); err != nil {
		return nil, err
	}

	// Check, credit and ledger insert commit together. One paymentID
	// credits at most once even when confirms race: the loser's insert
	// hits the unique reference index and its credit rolls back.
	out, err := s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if existing, err := s.transactionRepo.GetByReference(sessCtx, paymentID); err == nil {
			return existing, nil
		} else if err != models.ErrNotFound {
			return nil, err
		}

		if _, err := s.customerWallets.Credit(sessCtx, userID, verification.Amount); err != nil {
			return nil, err
		}

		txn := &models.WalletTransaction{
			Amount:    verification.Amount,
			Type:      models.TransactionTypeTopUp,
			IsCredit:  true,
			ToUserID:  &userID,
			Reference: paymentID,
		}
		if err := s.transactionRepo.Create(sessCtx, txn); err != nil {
			return nil, err
		}

		return txn, nil
	})
	if err != nil {
		return nil, err
	}

	txn := out.(*models.WalletTransaction)

	s.logger.WithUserID(userID).
		WithField("amount", verification.Amount).
		WithField("payment_id", paymentID).
		Info("Wallet topped up")

	return txn, nil
}

func (s *walletService) SendMoney(ctx context.Context, fromUserID, toUserID primitive.ObjectID, amount float64) (*models.WalletTransaction, error) {
	if amount < utils.MinTransferAmount {
		return nil, fmt.Errorf("transfer amount %.2f below minimum", amount)
	}
	if fromUserID == toUserID {
		return nil, fmt.Errorf("cannot transfer to the same wallet")
	}

	recipient, err := s.userRepo.GetByID(ctx, toUserID)
	if err != nil {
		return nil, err
	}

	if _, err := s.EnsureWallet(ctx, toUserID, models.RoleCustomer); err != nil {
		return nil, err
	}

	out, err := s.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		if _, err := s.customerWallets.Debit(sessCtx, fromUserID, amount); err != nil {
			return nil, err
		}
		if _, err := s.customerWallets.Credit(sessCtx, toUserID, amount); err != nil {
			return nil, err
		}

		txn := &models.WalletTransaction{
			Amount:           amount,
			Type:             models.TransactionTypeSendMoney,
			IsCredit:         false,
			FromUserID:       &fromUserID,
			ToUserID:         &toUserID,
			CounterpartyName: recipient.Name,
		}
		if err := s.transactionRepo.Create(sessCtx, txn); err != nil {
			return nil, err
		}

		return txn, nil
	})
	if err != nil {
		return nil, err
	}

	txn := out.(*models.WalletTransaction)

	s.logger.WithUserID(fromUserID).
		WithField("to_user_id", toUserID.Hex()).
		WithField("amount", amount).
		Info("Money sent")

	return txn, nil
}

func (s *walletService) ListTransactions(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.WalletTransaction, int64, error) {
	return s.transactionRepo.ListByUser(ctx, userID, params)
}

func (s *walletService) ListSessionTransactions(ctx context.Context, sessionID primitive.ObjectID) ([]*models.WalletTransaction, error) {
	return s.transactionRepo.ListBySession(ctx, sessionID)
}
