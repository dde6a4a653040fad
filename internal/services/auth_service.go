package services

import (
	"context"
	"fmt"

	"astro-online/internal/config"
	"astro-online/internal/models"
	"astro-online/internal/repositories/interfaces"
	"astro-online/internal/utils"
	"astro-online/pkg/cache"
	"astro-online/pkg/logger"
	"astro-online/pkg/sms"
)

type AuthResult struct {
	User   *models.User     `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
	IsNew  bool             `json:"is_new"`
}

type AuthService interface {
	// RequestOTP sends a one-time code to the phone number.
	RequestOTP(ctx context.Context, phone string) error

	// VerifyOTP checks the code and signs the user in, registering them on
	// first contact.
	VerifyOTP(ctx context.Context, phone, code, name string, role models.UserRole) (*AuthResult, error)

	RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error)
}

type authService struct {
	userRepo      interfaces.UserRepository
	walletService WalletService
	cache         *cache.RedisCache
	smsProvider   sms.SMSProvider
	security      *config.SecurityConfig
	logger        *logger.Logger
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	walletService WalletService,
	cache *cache.RedisCache,
	smsProvider sms.SMSProvider,
	security *config.SecurityConfig,
	logger *logger.Logger,
) AuthService {
	return &authService{
		userRepo:      userRepo,
		walletService: walletService,
		cache:         cache,
		smsProvider:   smsProvider,
		security:      security,
		logger:        logger,
	}
}

func (s *authService) RequestOTP(ctx context.Context, phone string) error {
	phone = utils.NormalizePhone(phone)
	if !utils.IsValidPhone(phone) {
		return fmt.Errorf("invalid phone number")
	}

	// Rate limit OTP requests per phone.
	rateKey := fmt.Sprintf("otp_rate:%s", phone)
	count, err := s.cache.Increment(ctx, rateKey, s.security.OTPExpiry)
	if err != nil {
		return fmt.Errorf("failed to check OTP rate limit: %w", err)
	}
	if count > utils.OTPRateLimit {
		return fmt.Errorf("too many OTP requests, try again later")
	}

	code := utils.GenerateOTP()

	otpKey := fmt.Sprintf(utils.CacheKeyOTP, phone)
	if err := s.cache.Set(ctx, otpKey, code, s.security.OTPExpiry); err != nil {
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	_, err = s.smsProvider.SendSMS(ctx, &sms.SMSRequest{
		To:      phone,
		Message: fmt.Sprintf("Your %s verification code is %s", utils.AppName, code),
		Type:    "otp",
	})
	if err != nil {
		return fmt.Errorf("failed to send OTP: %w", err)
	}

	s.logger.WithField("phone", phone).Info("OTP sent")

	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, phone, code, name string, role models.UserRole) (*AuthResult, error) {
	phone = utils.NormalizePhone(phone)

	otpKey := fmt.Sprintf(utils.CacheKeyOTP, phone)

	var stored string
	if err := s.cache.Get(ctx, otpKey, &stored); err != nil {
		if cache.IsNotFound(err) {
			return nil, fmt.Errorf("%s", utils.ErrTokenExpired)
		}
		return nil, fmt.Errorf("failed to load OTP: %w", err)
	}
	if stored != code {
		return nil, fmt.Errorf("%s", utils.ErrInvalidCredentials)
	}

	// A code verifies once.
	s.cache.Delete(ctx, otpKey)

	isNew := false
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err == models.ErrNotFound {
		if role == "" {
			role = models.RoleCustomer
		}
		user = &models.User{
			Phone: phone,
			Name:  name,
			Role:  role,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		isNew = true

		// Customers get their zero-balance wallet at signup. Astrologer
		// payout wallets are created with the astrologer profile.
		if user.Role == models.RoleCustomer {
			if _, err := s.walletService.EnsureWallet(ctx, user.ID, models.RoleCustomer); err != nil {
				return nil, fmt.Errorf("failed to create wallet: %w", err)
			}
		}
	} else if err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateLastSeen(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to update last seen")
	}

	tokens, err := utils.GenerateTokenPair(user.ID, string(user.Role), user.Phone, s.security.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to issue tokens: %w", err)
	}

	s.logger.WithUserID(user.ID).WithField("is_new", isNew).Info("User signed in")

	return &AuthResult{
		User:   user,
		Tokens: tokens,
		IsNew:  isNew,
	}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	return utils.RefreshAccessToken(refreshToken, s.security.JWTSecret)
}
