package utils

import "time"

// Application Constants
const (
	AppName    = "AstroOnline"
	AppVersion = "1.0.0"

	// Default values
	DefaultLanguage    = "en"
	DefaultCurrency    = "INR"
	DefaultCountryCode = "+91"
	DefaultTimeZone    = "Asia/Kolkata"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	JWTAccessTokenTTL  = 24 * time.Hour
	JWTRefreshTokenTTL = 7 * 24 * time.Hour
	OTPLength          = 6
	OTPExpiry          = 10 * time.Minute

	// Session Constants
	SessionRequestTimeout = 5 * time.Minute
	SessionMaxDuration    = 2 * time.Hour
	MinSessionCharge      = 0.0

	// Wallet Constants
	MinTopUpAmount    = 1.0
	MaxTopUpAmount    = 100000.0
	MinTransferAmount = 1.0

	// Rate Limiting
	DefaultRateLimit = 100
	LoginRateLimit   = 5
	OTPRateLimit     = 3

	// Notification
	NotificationRetryAttempts = 3
	NotificationTimeout       = 30 * time.Second

	// Chat
	MaxMessageLength = 1000
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
	StatusFailed  = "failed"
)

// Error Messages
const (
	ErrInvalidCredentials   = "invalid credentials"
	ErrUserNotFound         = "user not found"
	ErrUserExists           = "user already exists"
	ErrInvalidToken         = "invalid token"
	ErrTokenExpired         = "token expired"
	ErrInvalidInput         = "invalid input"
	ErrInternalServer       = "internal server error"
	ErrUnauthorized         = "unauthorized"
	ErrForbidden            = "forbidden"
	ErrValidationFailed     = "validation failed"
	ErrPaymentFailed        = "payment failed"
	ErrSessionNotFound      = "session not found"
	ErrAstrologerNotFound   = "astrologer not found"
	ErrWalletNotFound       = "wallet not found"
	ErrInsufficientBalance  = "insufficient wallet balance"
	ErrAstrologerBusyMsg    = "astrologer is busy with another session"
	ErrAstrologerOfflineMsg = "astrologer is not available"
)

// Cache Keys
const (
	CacheKeyOTP              = "otp:%s"
	CacheKeyOnlineAstrologer = "astrologer:online:%s"
	CacheKeyBusyAstrologer   = "astrologer:busy:%s"
	CacheKeyUserSession      = "user:session:%s"
	CacheKeyWalletBalance    = "wallet:balance:%s"
)

// Transaction References
const (
	TxnReferencePrefix = "TXN"
)
