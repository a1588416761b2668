package router

import (
	"github.com/gin-gonic/gin"

	"github.com/vkaravaev/workhub-backend/internal/config"
	"github.com/vkaravaev/workhub-backend/internal/http/handlers"
	"github.com/vkaravaev/workhub-backend/internal/http/middleware"
	"github.com/vkaravaev/workhub-backend/internal/models"
	"github.com/vkaravaev/workhub-backend/internal/service"
)

// SetupRouter собирает все маршруты приложения.
func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	marketplaceHandler *handlers.MarketplaceHandler,
	proposalHandler *handlers.ProposalHandler,
	projectHandler *handlers.ProjectHandler,
	paymentHandler *handlers.PaymentHandler,
	deliverableHandler *handlers.DeliverableHandler,
	disputeHandler *handlers.DisputeHandler,
	conversationHandler *handlers.ConversationHandler,
	notificationHandler *handlers.NotificationHandler,
	wsHandler *handlers.WSHandler,
	healthHandler *handlers.HealthHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod))
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.GET("/me", authHandler.Me)
		protectedAuth.POST("/verify-email", authHandler.VerifyEmail)
		protectedAuth.POST("/resend-code", authHandler.ResendCode)
	}

	// Публичные маршруты.
	api.GET("/ws", wsHandler.Handle)
	api.GET("/services", marketplaceHandler.ListServices)
	api.GET("/services/:id", middleware.UUIDValidator("id"), marketplaceHandler.GetService)

	// Защищённые маршруты.
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		// Услуги и заявки.
		protected.POST("/services", middleware.RequireRole(models.RoleFreelancer), marketplaceHandler.PublishService)
		protected.GET("/requests", marketplaceHandler.ListOpenRequests)
		protected.GET("/requests/my", marketplaceHandler.ListMyRequests)
		protected.POST("/requests", middleware.RequireRole(models.RoleClient), marketplaceHandler.CreateRequest)
		protected.GET("/requests/:id", middleware.UUIDValidator("id"), marketplaceHandler.GetRequest)
		protected.GET("/requests/:id/proposals", middleware.UUIDValidator("id"), proposalHandler.ListByRequest)

		// Отклики.
		protected.POST("/proposals", middleware.RequireRole(models.RoleFreelancer), proposalHandler.Create)
		protected.GET("/proposals/my", proposalHandler.ListMy)
		protected.GET("/proposals/:id", middleware.UUIDValidator("id"), proposalHandler.Get)
		protected.POST("/proposals/accept/:proposalId", middleware.UUIDValidator("proposalId"), proposalHandler.Accept)

		// Проекты, условия, договор.
		protected.GET("/projects", projectHandler.ListMy)
		protected.GET("/projects/:id", middleware.UUIDValidator("id"), projectHandler.Get)
		protected.POST("/projects/:id/scope", middleware.UUIDValidator("id"), projectHandler.SubmitScope)
		protected.GET("/projects/:id/scope/current", middleware.UUIDValidator("id"), projectHandler.CurrentScope)
		protected.GET("/projects/:id/scope/history", middleware.UUIDValidator("id"), projectHandler.ScopeHistory)
		protected.POST("/projects/:id/accept", middleware.UUIDValidator("id"), projectHandler.AcceptContract)
		protected.POST("/projects/:id/approve", middleware.UUIDValidator("id"), projectHandler.Approve)

		// Оплата.
		protected.POST("/paypal/create-order/:projectId", middleware.UUIDValidator("projectId"), paymentHandler.CreateOrder)
		protected.POST("/paypal/capture-order", paymentHandler.CaptureOrder)

		// Результаты работы.
		protected.POST("/projects/upload-deliverable", deliverableHandler.Upload)
		protected.GET("/projects/:id/deliverables", middleware.UUIDValidator("id"), deliverableHandler.ListByProject)
		protected.GET("/deliverables/:id/file", middleware.UUIDValidator("id"), deliverableHandler.Download)
		protected.POST("/deliverables/:id/resubmit", middleware.UUIDValidator("id"), deliverableHandler.Resubmit)
		protected.POST("/deliverables/:id/approve", middleware.UUIDValidator("id"), deliverableHandler.Approve)
		protected.POST("/deliverables/:id/reject", middleware.UUIDValidator("id"), deliverableHandler.Reject)

		// Чат проекта.
		protected.GET("/projects/:id/conversation", middleware.UUIDValidator("id"), conversationHandler.Get)
		protected.GET("/projects/:id/messages", middleware.UUIDValidator("id"), conversationHandler.ListMessages)
		protected.POST("/projects/:id/messages", middleware.UUIDValidator("id"), conversationHandler.SendMessage)

		// Споры.
		protected.POST("/disputes", middleware.RequireRole(models.RoleClient), disputeHandler.Open)
		protected.GET("/disputes/by-project/:projectId", middleware.UUIDValidator("projectId"), disputeHandler.ListByProject)
		protected.GET("/disputes/:id/logs", middleware.UUIDValidator("id"), disputeHandler.Logs)

		// Уведомления.
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread-count", notificationHandler.CountUnread)
		protected.POST("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
		protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	}

	// Администрирование споров.
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware(tokenManager), middleware.RequireRole(models.RoleAdmin))
	{
		admin.POST("/disputes/:id/accept", middleware.UUIDValidator("id"), disputeHandler.AdminAccept)
		admin.POST("/disputes/:id/reject", middleware.UUIDValidator("id"), disputeHandler.AdminReject)
	}

	return r
}
