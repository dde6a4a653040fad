package services

import (
	"context"

	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CustomerService manages the birth profile astrologers consult on: birth
// date, time and place, plus contact details.
type CustomerService interface {
	GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Customer, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Customer, error)
	EnsureProfile(ctx context.Context, user *models.User) (*models.Customer, error)
	UpdateProfile(ctx context.Context, userID primitive.ObjectID, updates map[string]interface{}) error
}

type customerService struct {
	customerRepo interfaces.CustomerRepository
	logger       *logger.Logger
}

func NewCustomerService(customerRepo interfaces.CustomerRepository, logger *logger.Logger) CustomerService {
	return &customerService{
		customerRepo: customerRepo,
		logger:       logger,
	}
}

func (s *customerService) GetProfile(ctx context.Context, id primitive.ObjectID) (*models.Customer, error) {
	return s.customerRepo.GetByID(ctx, id)
}

func (s *customerService) GetByUserID(ctx context.Context, userID primitive.ObjectID) (*models.Customer, error) {
	return s.customerRepo.GetByUserID(ctx, userID)
}

// EnsureProfile returns the customer document for the user, creating an
// empty one seeded from the account on first access.
func (s *customerService) EnsureProfile(ctx context.Context, user *models.User) (*models.Customer, error) {
	customer, err := s.customerRepo.GetByUserID(ctx, user.ID)
	if err == nil {
		return customer, nil
	}
	if err != models.ErrNotFound {
		return nil, err
	}

	customer = &models.Customer{
		UserID: user.ID,
		Name:   user.Name,
		Phone:  user.Phone,
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}

	s.logger.WithUserID(user.ID).Info("Customer profile created")

	return customer, nil
}

func (s *customerService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, updates map[string]interface{}) error {
	customer, err := s.customerRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}

	for _, key := range []string{"_id", "user_id", "phone", "is_deleted", "is_active"} {
		delete(updates, key)
	}

	return s.customerRepo.Update(ctx, customer.ID, updates)
}
