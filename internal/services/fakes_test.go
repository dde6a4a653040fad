package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"astro-online/internal/models"
	"astro-online/internal/utils"
	"astro-online/pkg/logger"
	"astro-online/pkg/payment"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func testLogger() *logger.Logger {
	log, _ := logger.NewLogger(&logger.Config{Level: "panic", Format: "text"})
	return log
}

// fakeTxRunner runs the function directly, serialized under a mutex the
// way concurrent Mongo transactions touching the same documents would be.
type fakeTxRunner struct {
	mu sync.Mutex
}

func (r *fakeTxRunner) WithTransaction(ctx context.Context, fn func(sessCtx mongo.SessionContext) (interface{}, error)) (interface{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return fn(mongo.NewSessionContext(ctx, nil))
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[primitive.ObjectID]*models.Session
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[primitive.ObjectID]*models.Session)}
}

func (r *fakeSessionRepo) hasOngoingLocked(astrologerID primitive.ObjectID) bool {
	for _, s := range r.sessions {
		if s.AstrologerID == astrologerID && s.Status == models.SessionStatusOngoing {
			return true
		}
	}
	return false
}

func (r *fakeSessionRepo) Create(ctx context.Context, session *models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if session.Status == models.SessionStatusOngoing && r.hasOngoingLocked(session.AstrologerID) {
		return models.ErrAstrologerBusy
	}

	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now()
	session.UpdatedAt = time.Now()
	copied := *session
	r.sessions[session.ID] = &copied
	return nil
}

func (r *fakeSessionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) GetOngoingByAstrologer(ctx context.Context, astrologerID primitive.ObjectID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.AstrologerID == astrologerID && s.Status == models.SessionStatusOngoing {
			copied := *s
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeSessionRepo) GetOngoingByCustomer(ctx context.Context, customerID primitive.ObjectID) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.sessions {
		if s.CustomerID == customerID && s.Status == models.SessionStatusOngoing {
			copied := *s
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeSessionRepo) TransitionStatus(ctx context.Context, id primitive.ObjectID, from, to models.SessionStatus, set map[string]interface{}) (*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, ok := r.sessions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if session.Status != from {
		return nil, models.ErrInvalidState
	}
	if to == models.SessionStatusOngoing && r.hasOngoingLocked(session.AstrologerID) {
		return nil, models.ErrAstrologerBusy
	}

	session.Status = to
	if v, ok := set["started_at"].(time.Time); ok {
		session.StartedAt = &v
	}
	if v, ok := set["ended_at"].(time.Time); ok {
		session.EndedAt = &v
	}
	session.UpdatedAt = time.Now()

	copied := *session
	return &copied, nil
}

func (r *fakeSessionRepo) ListByCustomer(ctx context.Context, customerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Session
	for _, s := range r.sessions {
		if s.CustomerID == customerID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeSessionRepo) ListByAstrologer(ctx context.Context, astrologerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Session, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Session
	for _, s := range r.sessions {
		if s.AstrologerID == astrologerID {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeSessionRepo) ListPendingForAstrologer(ctx context.Context, astrologerID primitive.ObjectID) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Session
	for _, s := range r.sessions {
		if s.AstrologerID == astrologerID && s.Status == models.SessionStatusPending {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *fakeSessionRepo) FindStaleOngoing(ctx context.Context, cutoff time.Time) ([]*models.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Session
	for _, s := range r.sessions {
		if s.Status == models.SessionStatusOngoing && s.StartedAt != nil && s.StartedAt.Before(cutoff) {
			copied := *s
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[primitive.ObjectID]*models.Wallet
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{wallets: make(map[primitive.ObjectID]*models.Wallet)}
}

func (r *fakeWalletRepo) seed(ownerID primitive.ObjectID, balance float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wallets[ownerID] = &models.Wallet{
		ID:       primitive.NewObjectID(),
		OwnerID:  ownerID,
		Balance:  balance,
		Currency: "INR",
		IsActive: true,
	}
}

func (r *fakeWalletRepo) balance(ownerID primitive.ObjectID) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if w, ok := r.wallets[ownerID]; ok {
		return w.Balance
	}
	return 0
}

func (r *fakeWalletRepo) Create(ctx context.Context, wallet *models.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallet.ID = primitive.NewObjectID()
	wallet.IsActive = true
	copied := *wallet
	r.wallets[wallet.OwnerID] = &copied
	return nil
}

func (r *fakeWalletRepo) GetByOwner(ctx context.Context, ownerID primitive.ObjectID) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallet, ok := r.wallets[ownerID]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) Debit(ctx context.Context, ownerID primitive.ObjectID, amount float64) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallet, ok := r.wallets[ownerID]
	if !ok {
		return nil, models.ErrNotFound
	}
	if !wallet.IsActive {
		return nil, models.ErrWalletInactive
	}
	if wallet.Balance < amount {
		return nil, models.ErrInsufficientFunds
	}

	wallet.Balance -= amount
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) DebitUpTo(ctx context.Context, ownerID primitive.ObjectID, amount float64) (float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallet, ok := r.wallets[ownerID]
	if !ok {
		return 0, models.ErrNotFound
	}
	taken := amount
	if wallet.Balance < taken {
		taken = wallet.Balance
	}
	wallet.Balance -= taken
	return taken, nil
}

func (r *fakeWalletRepo) Credit(ctx context.Context, ownerID primitive.ObjectID, amount float64) (*models.Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallet, ok := r.wallets[ownerID]
	if !ok {
		return nil, models.ErrNotFound
	}
	wallet.Balance += amount
	copied := *wallet
	return &copied, nil
}

func (r *fakeWalletRepo) SetActive(ctx context.Context, ownerID primitive.ObjectID, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	wallet, ok := r.wallets[ownerID]
	if !ok {
		return models.ErrNotFound
	}
	wallet.IsActive = active
	return nil
}

type fakeTransactionRepo struct {
	mu   sync.Mutex
	txns []*models.WalletTransaction
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, txn *models.WalletTransaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// References are unique, as in the real collection.
	if txn.Reference != "" {
		for _, t := range r.txns {
			if t.Reference == txn.Reference {
				return fmt.Errorf("duplicate transaction reference %s", txn.Reference)
			}
		}
	}

	txn.ID = primitive.NewObjectID()
	if txn.Status == "" {
		txn.Status = models.TransactionStatusSuccess
	}
	if txn.Reference == "" {
		txn.Reference = utils.GenerateTransactionReference()
	}
	txn.CreatedAt = time.Now()
	copied := *txn
	r.txns = append(r.txns, &copied)
	return nil
}

func (r *fakeTransactionRepo) countByReference(reference string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.txns {
		if t.Reference == reference {
			n++
		}
	}
	return n
}

func (r *fakeTransactionRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.txns {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeTransactionRepo) GetByReference(ctx context.Context, reference string) (*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, t := range r.txns {
		if t.Reference == reference {
			copied := *t
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeTransactionRepo) ListByUser(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.WalletTransaction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.WalletTransaction
	for _, t := range r.txns {
		if (t.FromUserID != nil && *t.FromUserID == userID) || (t.ToUserID != nil && *t.ToUserID == userID) {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeTransactionRepo) ListBySession(ctx context.Context, sessionID primitive.ObjectID) ([]*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.WalletTransaction
	for _, t := range r.txns {
		if t.SessionID != nil && *t.SessionID == sessionID {
			copied := *t
			out = append(out, &copied)
		}
	}
	return out, nil
}

type fakeAstrologerRepo struct {
	mu          sync.Mutex
	astrologers map[primitive.ObjectID]*models.Astrologer
}

func newFakeAstrologerRepo() *fakeAstrologerRepo {
	return &fakeAstrologerRepo{astrologers: make(map[primitive.ObjectID]*models.Astrologer)}
}

func (r *fakeAstrologerRepo) seed(astrologer *models.Astrologer) *models.Astrologer {
	r.mu.Lock()
	defer r.mu.Unlock()

	if astrologer.ID.IsZero() {
		astrologer.ID = primitive.NewObjectID()
	}
	copied := *astrologer
	r.astrologers[astrologer.ID] = &copied
	return astrologer
}

func (r *fakeAstrologerRepo) Create(ctx context.Context, astrologer *models.Astrologer) error {
	astrologer.ID = primitive.NewObjectID()
	astrologer.IsActive = true
	r.seed(astrologer)
	return nil
}

func (r *fakeAstrologerRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Astrologer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	astrologer, ok := r.astrologers[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *astrologer
	return &copied, nil
}

func (r *fakeAstrologerRepo) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Astrologer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.astrologers {
		if a.UserID == userID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeAstrologerRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeAstrologerRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.astrologers, id)
	return nil
}

func (r *fakeAstrologerRepo) SetOnline(ctx context.Context, id primitive.ObjectID, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	astrologer, ok := r.astrologers[id]
	if !ok {
		return models.ErrNotFound
	}
	astrologer.IsOnline = online
	if !online {
		astrologer.IsBusy = false
	}
	return nil
}

func (r *fakeAstrologerRepo) SetBusy(ctx context.Context, id primitive.ObjectID, busy bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	astrologer, ok := r.astrologers[id]
	if !ok {
		return models.ErrNotFound
	}
	astrologer.IsBusy = busy
	return nil
}

func (r *fakeAstrologerRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	return nil, 0, nil
}

func (r *fakeAstrologerRepo) ListOnline(ctx context.Context, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*models.Astrologer
	for _, a := range r.astrologers {
		if a.IsActive && a.IsOnline {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeAstrologerRepo) ListByCategory(ctx context.Context, category string, params *utils.PaginationParams) ([]*models.Astrologer, int64, error) {
	return nil, 0, nil
}

func (r *fakeAstrologerRepo) IncrementTotalOrders(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	astrologer, ok := r.astrologers[id]
	if !ok {
		return models.ErrNotFound
	}
	astrologer.TotalOrders++
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[primitive.ObjectID]*models.User)}
}

func (r *fakeUserRepo) seed(user *models.User) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	copied := *user
	r.users[user.ID] = &copied
	return user
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	user.ID = primitive.NewObjectID()
	user.IsActive = true
	r.seed(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, id primitive.ObjectID, updates map[string]interface{}) error {
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Phone == phone {
			copied := *u
			return &copied, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *fakeUserRepo) UpdateFCMToken(ctx context.Context, id primitive.ObjectID, token string) error {
	return nil
}

func (r *fakeUserRepo) UpdateLastSeen(ctx context.Context, id primitive.ObjectID) error {
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, params *utils.PaginationParams) ([]*models.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeUserRepo) GetByRole(ctx context.Context, role models.UserRole, params *utils.PaginationParams) ([]*models.User, int64, error) {
	return nil, 0, nil
}

// fakeNotifier records deliveries instead of touching the hub or FCM.
type fakeNotifier struct {
	mu     sync.Mutex
	titles []string
}

func (n *fakeNotifier) Notify(ctx context.Context, userID primitive.ObjectID, title, message string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.titles = append(n.titles, title)
	return nil
}

func (n *fakeNotifier) List(ctx context.Context, userID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Notification, int64, error) {
	return nil, 0, nil
}

func (n *fakeNotifier) MarkRead(ctx context.Context, id primitive.ObjectID) error { return nil }

func (n *fakeNotifier) MarkAllRead(ctx context.Context, userID primitive.ObjectID) error { return nil }

func (n *fakeNotifier) CountUnread(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return 0, nil
}

type fakePaymentProvider struct {
	verified bool
	amount   float64
	orders   int
}

func (p *fakePaymentProvider) CreateOrder(ctx context.Context, request *payment.OrderRequest) (*payment.OrderResponse, error) {
	p.orders++
	return &payment.OrderResponse{
		OrderID:  "order_test",
		Amount:   request.Amount,
		Currency: request.Currency,
		Status:   "created",
	}, nil
}

func (p *fakePaymentProvider) VerifyPayment(ctx context.Context, request *payment.VerificationRequest) (*payment.VerificationResponse, error) {
	return &payment.VerificationResponse{
		Verified:  p.verified,
		PaymentID: request.PaymentID,
		Amount:    p.amount,
		Status:    "captured",
	}, nil
}

func (p *fakePaymentProvider) RefundPayment(ctx context.Context, request *payment.RefundRequest) (*payment.RefundResponse, error) {
	return &payment.RefundResponse{RefundID: "rfnd_test", Status: "processed"}, nil
}
