package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"astro-online/internal/config"
	"astro-online/internal/handlers"
	"astro-online/internal/repositories/mongodb"
	"astro-online/internal/services"
	"astro-online/pkg/cache"
	"astro-online/pkg/database"
	"astro-online/pkg/logger"
	"astro-online/pkg/payment"
	"astro-online/pkg/push"
	"astro-online/pkg/sms"
	"astro-online/pkg/websocket"
	"astro-online/routes"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		appLogger.WithError(err).Fatal("Failed to run migrations")
	}

	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	smsProvider, err := buildSMSProvider(cfg.SMS)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize SMS provider")
	}

	pushProvider := buildPushProvider(cfg.Push, appLogger)
	paymentProvider := buildPaymentProvider(cfg.Payment)

	// Repositories. The two wallet collections share one implementation;
	// customer money and astrologer payouts never mix in a collection.
	userRepo := mongodb.NewUserRepository(db.Database, redisCache)
	customerRepo := mongodb.NewCustomerRepository(db.Database, redisCache)
	astrologerRepo := mongodb.NewAstrologerRepository(db.Database, redisCache)
	sessionRepo := mongodb.NewSessionRepository(db.Database)
	transactionRepo := mongodb.NewTransactionRepository(db.Database)
	chatRepo := mongodb.NewChatRepository(db.Database)
	notificationRepo := mongodb.NewNotificationRepository(db.Database)
	customerWallets := mongodb.NewWalletRepository(db.Database, "user_wallets")
	astrologerWallets := mongodb.NewWalletRepository(db.Database, "astrologer_wallets")

	hub := websocket.NewHub()

	// Services.
	notificationService := services.NewNotificationService(notificationRepo, userRepo, hub, pushProvider, appLogger)
	availabilityService := services.NewAvailabilityService(astrologerRepo, sessionRepo, redisCache, appLogger)
	settlementService := services.NewSettlementService(customerWallets, astrologerWallets, transactionRepo, appLogger)
	sessionService := services.NewSessionService(db, sessionRepo, astrologerRepo, customerWallets, availabilityService, settlementService, notificationService, cfg.Session, appLogger)
	walletService := services.NewWalletService(db, customerWallets, astrologerWallets, transactionRepo, userRepo, astrologerRepo, paymentProvider, cfg.Payment, appLogger)
	authService := services.NewAuthService(userRepo, walletService, redisCache, smsProvider, cfg.Security, appLogger)
	userService := services.NewUserService(userRepo, appLogger)
	astrologerService := services.NewAstrologerService(astrologerRepo, walletService, appLogger)
	chatService := services.NewChatService(chatRepo, hub, appLogger)
	customerService := services.NewCustomerService(customerRepo, appLogger)

	hub.SetInboundHandler(chatService)
	go hub.Run()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sessionService.RunWatchdog(ctx)

	router := routes.Setup(cfg, appLogger, &routes.Handlers{
		Auth:         handlers.NewAuthHandler(authService, userService),
		Session:      handlers.NewSessionHandler(sessionService, astrologerService),
		Astrologer:   handlers.NewAstrologerHandler(astrologerService, availabilityService),
		Customer:     handlers.NewCustomerHandler(customerService, userService),
		Wallet:       handlers.NewWalletHandler(walletService),
		Chat:         handlers.NewChatHandler(chatService),
		Notification: handlers.NewNotificationHandler(notificationService),
		Socket:       websocket.NewHandler(hub),
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.App.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
}

func buildSMSProvider(cfg *config.SMSConfig) (sms.SMSProvider, error) {
	switch cfg.Provider {
	case "aws_sns":
		return sms.NewAWSSNSProvider(cfg.AWS.Region)
	default:
		return sms.NewTwilioProvider(cfg.Twilio.AccountSID, cfg.Twilio.AuthToken, cfg.Twilio.FromNumber), nil
	}
}

// buildPushProvider returns nil when FCM is not configured; notifications
// then stay in-app only.
func buildPushProvider(cfg *config.PushConfig, log *logger.Logger) push.PushProvider {
	if cfg.FCM.Credentials == "" {
		log.Warn("FCM credentials not configured, push notifications disabled")
		return nil
	}

	provider, err := push.NewFCMProvider(cfg.FCM.Credentials)
	if err != nil {
		log.WithError(err).Warn("Failed to initialize FCM, push notifications disabled")
		return nil
	}

	return provider
}

func buildPaymentProvider(cfg *config.PaymentConfig) payment.PaymentProvider {
	switch cfg.DefaultProvider {
	case "stripe":
		return payment.NewStripeProvider(cfg.Stripe.SecretKey)
	default:
		return payment.NewRazorpayProvider(cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	}
}
