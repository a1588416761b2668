package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/vkaravaev/workhub-backend/internal/config"
	"github.com/vkaravaev/workhub-backend/internal/db"
	httpHandlers "github.com/vkaravaev/workhub-backend/internal/http/handlers"
	httpRouter "github.com/vkaravaev/workhub-backend/internal/http/router"
	"github.com/vkaravaev/workhub-backend/internal/logger"
	"github.com/vkaravaev/workhub-backend/internal/payment/paypal"
	"github.com/vkaravaev/workhub-backend/internal/repository"
	"github.com/vkaravaev/workhub-backend/internal/service"
	"github.com/vkaravaev/workhub-backend/internal/storage"
	"github.com/vkaravaev/workhub-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	// Инициализация логгера.
	if cfg.Env == "development" {
		logger.Init("debug")
		logger.SetTextFormatter()
	} else {
		logger.Init("info")
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	// Вспомогательные сервисы.
	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	deliverableStorage, err := storage.NewDeliverableStorage(cfg.FileStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		log.Fatalf("main: не удалось подготовить файловое хранилище: %v", err)
	}

	paypalClient := paypal.NewClient(cfg.PayPalBaseURL, cfg.PayPalClientID, cfg.PayPalSecret)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	verificationRepo := repository.NewVerificationRepository(dbConn)
	serviceRepo := repository.NewServiceRepository(dbConn)
	proposalRepo := repository.NewProposalRepository(dbConn)
	projectRepo := repository.NewProjectRepository(dbConn)
	deliverableRepo := repository.NewDeliverableRepository(dbConn)
	disputeRepo := repository.NewDisputeRepository(dbConn)
	conversationRepo := repository.NewConversationRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)

	// Вебсокеты: хаб раздаёт события и сохраняет их как уведомления.
	hub := ws.NewHub(ctx)
	notificationService := service.NewNotificationService(notificationRepo)
	hub.SetNotificationSaver(ws.NewNotificationServiceAdapter(notificationService))
	go hub.Run()

	// Сервисы.
	verificationService := service.NewVerificationService(verificationRepo, cfg.SignupSweepEvery)
	authService := service.NewAuthService(userRepo, verificationService, tokenManager)
	marketplaceService := service.NewMarketplaceService(serviceRepo, hub)
	proposalService := service.NewProposalService(proposalRepo, serviceRepo, projectRepo, hub)
	scopeService := service.NewScopeService(projectRepo, hub)
	projectService := service.NewProjectService(projectRepo, serviceRepo, serviceRepo, deliverableRepo, hub)
	paymentService := service.NewPaymentService(paypalClient, projectRepo, serviceRepo, proposalRepo, hub, cfg.PayPalCurrency)
	deliverableService := service.NewDeliverableService(deliverableRepo, projectRepo, hub)
	disputeService := service.NewDisputeService(disputeRepo, projectRepo, hub)
	conversationService := service.NewConversationService(conversationRepo, hub)

	// Фоновая очистка неподтверждённых регистраций.
	verificationService.StartSweeper(ctx)

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService, verificationService)
	marketplaceHandler := httpHandlers.NewMarketplaceHandler(marketplaceService)
	proposalHandler := httpHandlers.NewProposalHandler(proposalService)
	projectHandler := httpHandlers.NewProjectHandler(projectService, scopeService)
	paymentHandler := httpHandlers.NewPaymentHandler(paymentService)
	deliverableHandler := httpHandlers.NewDeliverableHandler(deliverableService, deliverableStorage)
	disputeHandler := httpHandlers.NewDisputeHandler(disputeService)
	conversationHandler := httpHandlers.NewConversationHandler(conversationService)
	notificationHandler := httpHandlers.NewNotificationHandler(notificationService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	// Роутер.
	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		marketplaceHandler,
		proposalHandler,
		projectHandler,
		paymentHandler,
		deliverableHandler,
		disputeHandler,
		conversationHandler,
		notificationHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
