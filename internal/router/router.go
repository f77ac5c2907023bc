package router

import (
	"log"

	"edushare/config"
	"edushare/internal/handler"
	"edushare/internal/middleware"
	"edushare/internal/repository"
	"edushare/internal/service"
	"edushare/internal/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services are the stores shared between the HTTP surface and background jobs.
type Services struct {
	Chat         *service.ChatService
	Notification *service.NotificationService
	Payment      *service.PaymentService
	Feedback     *service.FeedbackService
}

// NewServices wires repositories and services around the delivery bridge.
func NewServices(cfg *config.Config, db *gorm.DB, push service.Pusher, fcm *service.FCMService) *Services {
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	convRepo := repository.NewConversationRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	resourceRepo := repository.NewResourceRepository(db)

	notifSvc := service.NewNotificationService(notificationRepo, userRepo, fcm, push)
	return &Services{
		Chat:         service.NewChatService(&cfg.Chat, convRepo, userRepo, notifSvc, push),
		Notification: notifSvc,
		Payment:      service.NewPaymentService(paymentRepo, auditRepo, notifSvc),
		Feedback:     service.NewFeedbackService(resourceRepo, userRepo, notifSvc),
	}
}

// NewFCM logs why mobile push is off when it is.
func NewFCM(cfg *config.FirebaseConfig) *service.FCMService {
	fcmSvc := service.NewFCMService(cfg.ServiceAccountPath)
	if fcmSvc != nil {
		log.Printf("[FCM] Push notifications enabled")
	} else if cfg.ServiceAccountPath != "" {
		log.Printf("[FCM] Push notifications disabled: failed to init (check service account file)")
	} else {
		log.Printf("[FCM] Push notifications disabled: set FIREBASE_SERVICE_ACCOUNT_PATH to enable")
	}
	return fcmSvc
}

// Setup builds the route table. The caller owns limiter and stops it on shutdown.
func Setup(cfg *config.Config, db *gorm.DB, hub *ws.Hub, svcs *Services, limiter *middleware.InMemoryRateLimiter) *gin.Engine {
	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Server.Env == "development" {
		r.Use(gin.Logger())
	}

	chatHandler := handler.NewChatHandler(svcs.Chat, &cfg.Chat)
	notificationHandler := handler.NewNotificationHandler(svcs.Notification, &cfg.Notification)
	paymentWebhookHandler := handler.NewPaymentWebhookHandler(svcs.Payment, &cfg.Payment)
	feedbackHandler := handler.NewFeedbackHandler(svcs.Feedback)
	adminHandler := handler.NewAdminHandler(svcs.Notification)
	meHandler := handler.NewMeHandler(repository.NewUserRepository(db))

	r.GET("/health", handler.Health(hub))
	r.GET("/ws", middleware.RateLimit(limiter), ws.UpgradeWS(&cfg.JWT, &cfg.WS, hub, svcs.Chat))

	v1 := r.Group("/api/v1")
	v1.POST("/webhooks/payment", middleware.RateLimit(limiter), paymentWebhookHandler.Handle)

	authed := v1.Group("")
	authed.Use(middleware.AuthRequired(&cfg.JWT), middleware.RateLimit(limiter))
	{
		chats := authed.Group("/chats")
		chats.POST("", chatHandler.GetOrCreate)
		chats.GET("", chatHandler.List)
		chats.GET("/unread-count", chatHandler.UnreadCount)
		chats.GET("/:id", chatHandler.Get)
		chats.GET("/:id/messages", chatHandler.Messages)
		chats.POST("/:id/messages", chatHandler.Send)
		chats.PUT("/:id/read", chatHandler.MarkRead)
		chats.DELETE("/:id", chatHandler.Delete)

		notifications := authed.Group("/notifications")
		notifications.GET("", notificationHandler.List)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.PUT("/mark-all-read", notificationHandler.MarkAllRead)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/:id", notificationHandler.Delete)

		authed.POST("/resources/:id/feedback", feedbackHandler.Submit)
		authed.POST("/me/fcm-token", meHandler.RegisterFCMToken)

		admin := authed.Group("/admin", middleware.AdminRequired())
		admin.POST("/notifications/broadcast", adminHandler.Broadcast)
	}
	return r
}
