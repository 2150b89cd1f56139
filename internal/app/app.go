package app

import (
	"context"
	"fmt"

	"policytracker/database"
	"policytracker/internal/config"
	"policytracker/internal/email"
	"policytracker/internal/handlers"
	"policytracker/internal/logger"
	"policytracker/internal/middleware"
	"policytracker/internal/payments"
	"policytracker/internal/repositories"
	"policytracker/internal/routes"
	"policytracker/internal/services"
	"policytracker/internal/storage"
	"policytracker/internal/validator"
	"policytracker/internal/workers"
	"policytracker/ws"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("Logger initialized", "env", cfg.Server.Env)

	logger.Info("Connecting to database...")
	gormDB, err := database.ConnectGorm()
	if err != nil {
		logger.Fatal("Failed to connect to GORM", "error", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		logger.Fatal("Failed to get *sql.DB from GORM", "error", err)
	}
	if err = sqlDB.Ping(); err != nil {
		logger.Fatal("Database unavailable", "error", err)
	}
	logger.Info("Database connected")

	if err := database.AutoMigrate(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	ginRouter := SetupRouter(cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("Server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("Server startup error", "error", err)
	}
}

func SetupRouter(cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	storageInstance, err := storage.NewStorage(storage.Config{
		BasePath: cfg.Storage.BasePath,
		BaseURL:  cfg.Storage.BaseURL,
	})
	if err != nil {
		logger.Fatal("Failed to initialize storage", "error", err)
	}
	logger.Info("Storage initialized", "base_path", cfg.Storage.BasePath)

	wsManager := ws.NewManager()
	go wsManager.Run()
	wsHandler := ws.NewHandler(wsManager)

	serviceContainer := initializeServices(cfg, storageInstance, wsManager)
	appHandlers := initializeHandlers(serviceContainer)

	worker := workers.NewSubscriptionWorker(
		gormDB,
		serviceContainer.SubscriptionService,
		repositories.NewRateLimitRepository(),
	)
	worker.Start(context.Background())

	ginRouter := initializeGinRouter(gormDB)
	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler, cfg.Cron.Secret)

	return ginRouter
}

func initializeServices(cfg *config.Config, storageInstance storage.Storage, wsManager *ws.Manager) *services.ServiceContainer {
	userRepo := repositories.NewUserRepository()
	refreshTokenRepo := repositories.NewRefreshTokenRepository()
	clientRepo := repositories.NewClientRepository()
	policyRepo := repositories.NewPolicyRepository()
	usageRepo := repositories.NewUsageRepository()
	subscriptionRepo := repositories.NewSubscriptionRepository()
	paymentRepo := repositories.NewPaymentRepository()
	rateLimitRepo := repositories.NewRateLimitRepository()
	notificationRepo := repositories.NewNotificationRepository()
	uploadRepo := repositories.NewUploadRepository()

	emailSender, err := email.NewSMTPSender(email.Config{
		SMTPHost:  cfg.Email.SMTPHost,
		SMTPPort:  cfg.Email.SMTPPort,
		Username:  cfg.Email.SMTPUsername,
		Password:  cfg.Email.SMTPPassword,
		FromEmail: cfg.Email.FromEmail,
		FromName:  cfg.Email.FromName,
	})
	if err != nil {
		logger.Warn("Email sender disabled", "reason", err.Error())
		emailSender = email.NewNopSender()
	}

	razorpayGateway := payments.NewRazorpayGateway(
		cfg.Payments.RazorpayKeyID,
		cfg.Payments.RazorpayKeySecret,
	)
	payuClient := payments.NewPayUClient(
		cfg.Payments.PayUMerchantKey,
		cfg.Payments.PayUMerchantSalt,
		cfg.Payments.PayUBaseURL,
	)

	subscriptionService := services.NewSubscriptionService(subscriptionRepo)
	usageService := services.NewUsageService(usageRepo, policyRepo, subscriptionService)
	authService := services.NewAuthService(userRepo, refreshTokenRepo)
	clientService := services.NewClientService(clientRepo, policyRepo)
	policyService := services.NewPolicyService(policyRepo, clientRepo, notificationRepo, usageService, wsManager)
	paymentService := services.NewPaymentService(
		paymentRepo,
		rateLimitRepo,
		userRepo,
		subscriptionService,
		razorpayGateway,
		cfg.Payments.RazorpayKeyID,
		payuClient,
		cfg.Payments.CallbackBaseURL,
	)
	dashboardService := services.NewDashboardService(policyRepo, clientRepo)
	notificationService := services.NewNotificationService(notificationRepo, wsManager)
	uploadService := services.NewUploadService(
		uploadRepo,
		usageService,
		storageInstance,
		cfg.Upload.MaxSize,
		cfg.Upload.AllowedTypes,
	)
	reportService := services.NewReportService(userRepo, policyRepo, usageRepo, emailSender, usageService)

	return &services.ServiceContainer{
		AuthService:         authService,
		ClientService:       clientService,
		PolicyService:       policyService,
		UsageService:        usageService,
		SubscriptionService: subscriptionService,
		PaymentService:      paymentService,
		DashboardService:    dashboardService,
		NotificationService: notificationService,
		UploadService:       uploadService,
		ReportService:       reportService,
		EmailSender:         emailSender,
		Storage:             storageInstance,
	}
}

func initializeHandlers(services *services.ServiceContainer) *handlers.AppHandlers {
	customValidator := validator.New()
	baseHandler := handlers.NewBaseHandler(customValidator)

	return &handlers.AppHandlers{
		AuthHandler:         handlers.NewAuthHandler(baseHandler, services.AuthService),
		ClientHandler:       handlers.NewClientHandler(baseHandler, services.ClientService),
		PolicyHandler:       handlers.NewPolicyHandler(baseHandler, services.PolicyService, services.UploadService),
		UsageHandler:        handlers.NewUsageHandler(baseHandler, services.UsageService),
		SubscriptionHandler: handlers.NewSubscriptionHandler(baseHandler, services.SubscriptionService),
		PaymentHandler:      handlers.NewPaymentHandler(baseHandler, services.PaymentService),
		DashboardHandler:    handlers.NewDashboardHandler(baseHandler, services.DashboardService),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, services.NotificationService),
		UploadHandler:       handlers.NewUploadHandler(baseHandler, services.UploadService),
		ReportHandler:       handlers.NewReportHandler(baseHandler, services.ReportService),
	}
}

func initializeGinRouter(db *gorm.DB) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.DBMiddleware(db))
	return router
}
