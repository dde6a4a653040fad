package routes

import (
	"astro-online/internal/config"
	"astro-online/internal/handlers"
	"astro-online/internal/middleware"
	"astro-online/pkg/logger"
	"astro-online/pkg/websocket"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Session      *handlers.SessionHandler
	Astrologer   *handlers.AstrologerHandler
	Customer     *handlers.CustomerHandler
	Wallet       *handlers.WalletHandler
	Chat         *handlers.ChatHandler
	Notification *handlers.NotificationHandler
	Socket       *websocket.Handler
}

// Setup wires the full HTTP surface onto a gin engine.
func Setup(cfg *config.Config, log *logger.Logger, h *Handlers) *gin.Engine {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RecoveryMiddleware(log),
		middleware.RequestIDMiddleware(),
		middleware.LoggingMiddleware(log),
		middleware.CORSMiddleware(cfg.Security.CORSAllowedOrigins),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": cfg.App.Version})
	})

	api := router.Group("/api/v1")
	auth := middleware.AuthRequired(cfg.Security.JWTSecret)

	setupAuthRoutes(api, auth, h.Auth)
	setupAstrologerRoutes(api, auth, h.Astrologer, h.Session)
	setupCustomerRoutes(api, auth, h.Customer)
	setupSessionRoutes(api, auth, h.Session, h.Wallet)
	setupWalletRoutes(api, auth, h.Wallet)
	setupChatRoutes(api, auth, h.Chat)
	setupNotificationRoutes(api, auth, h.Notification)
	setupSocketRoutes(api, auth, h.Socket)

	return router
}

func setupAuthRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handlers.AuthHandler) {
	public := r.Group("/auth")
	{
		public.POST("/otp/request", h.RequestOTP)
		public.POST("/otp/verify", h.VerifyOTP)
		public.POST("/refresh", h.RefreshToken)
	}

	private := r.Group("/auth")
	private.Use(auth)
	{
		private.GET("/me", h.Me)
		private.PUT("/fcm-token", h.UpdateFCMToken)
	}
}

func setupAstrologerRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handlers.AstrologerHandler, sessions *handlers.SessionHandler) {
	public := r.Group("/astrologers")
	{
		public.GET("", h.List)
		public.GET("/online", h.ListOnline)
		public.GET("/profile/:id", h.Get)
	}

	private := r.Group("/astrologers")
	private.Use(auth)
	{
		private.POST("", h.Register)
	}

	me := r.Group("/astrologers/me")
	me.Use(auth, middleware.AstrologerRequired())
	{
		me.PATCH("", h.UpdateProfile)
		me.POST("/online", h.GoOnline)
		me.POST("/offline", h.GoOffline)
		me.GET("/sessions", sessions.ListForAstrologer)
		me.GET("/requests", sessions.ListPending)
	}
}

func setupCustomerRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handlers.CustomerHandler) {
	customers := r.Group("/customers")
	customers.Use(auth)
	{
		customers.GET("/me", h.Me)
		customers.PUT("/me", h.UpdateMe)
		customers.GET("/profile/:id", middleware.AstrologerRequired(), h.Get)
	}
}

func setupSessionRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handlers.SessionHandler, wallet *handlers.WalletHandler) {
	sessions := r.Group("/sessions")
	sessions.Use(auth)
	{
		sessions.GET("", h.ListMine)
		sessions.GET("/:id", h.GetSession)
		sessions.GET("/:id/transactions", wallet.ListSessionTransactions)

		sessions.POST("/start", h.StartSession)
		sessions.POST("/start/:id", h.StartAccepted)
		sessions.POST("/request", h.RequestSession)
		sessions.POST("/end/:id", h.EndSession)
		sessions.POST("/cancel/:id", h.Cancel)

		sessions.PATCH("/:id", middleware.AstrologerRequired(), h.Respond)
	}
}

func setupWalletRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handlers.WalletHandler) {
	wallet := r.Group("/wallet")
	wallet.Use(auth)
	{
		wallet.GET("", h.GetBalance)
		wallet.GET("/transactions", h.ListTransactions)
		wallet.POST("/top-up", h.InitiateTopUp)
		wallet.POST("/top-up/confirm", h.ConfirmTopUp)
		wallet.POST("/send-money", h.SendMoney)
	}
}

func setupChatRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handlers.ChatHandler) {
	chat := r.Group("/chat")
	chat.Use(auth)
	{
		chat.GET("/rooms", h.ListRooms)
		chat.POST("/rooms", h.OpenRoom)
		chat.GET("/rooms/:room_id/messages", h.History)
		chat.POST("/rooms/:room_id/messages", h.SendMessage)
		chat.GET("/rooms/:room_id/last-message", h.LastMessage)
		chat.POST("/rooms/:room_id/read", h.MarkRead)
	}
}

func setupNotificationRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *handlers.NotificationHandler) {
	notifications := r.Group("/notifications")
	notifications.Use(auth)
	{
		notifications.GET("", h.List)
		notifications.GET("/unread-count", h.UnreadCount)
		notifications.PATCH("/:id", h.MarkRead)
		notifications.POST("/read-all", h.MarkAllRead)
	}
}

func setupSocketRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, h *websocket.Handler) {
	ws := r.Group("/ws")
	ws.Use(auth)
	{
		ws.GET("/chat/:room_id", h.HandleRoomSocket)
		ws.GET("/notifications", h.HandleNotificationSocket)
	}
}
