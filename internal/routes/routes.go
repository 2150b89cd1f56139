package routes

import (
	"policytracker/internal/handlers"
	"policytracker/internal/logger"
	"policytracker/internal/middleware"
	"policytracker/ws"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every HTTP and WebSocket route.
func RegisterRoutes(
	ginRouter *gin.Engine,
	appHandlers *handlers.AppHandlers,
	wsHandler *ws.Handler,
	cronSecret string,
) {
	api := ginRouter.Group("/api/v1")

	// Public routes.
	appHandlers.AuthHandler.RegisterRoutes(api)

	// User-facing routes behind JWT auth.
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		appHandlers.ClientHandler.RegisterRoutes(protected)
		appHandlers.PolicyHandler.RegisterRoutes(protected)
		appHandlers.UsageHandler.RegisterRoutes(protected)
		appHandlers.SubscriptionHandler.RegisterRoutes(protected)
		appHandlers.PaymentHandler.RegisterRoutes(protected)
		appHandlers.DashboardHandler.RegisterRoutes(protected)
		appHandlers.NotificationHandler.RegisterRoutes(protected)
		appHandlers.UploadHandler.RegisterRoutes(protected)
	}

	// Internally-triggered routes behind the shared cron secret.
	internal := api.Group("/internal")
	internal.Use(middleware.CronSecretMiddleware(cronSecret))
	{
		appHandlers.ReportHandler.RegisterRoutes(internal)
		appHandlers.PaymentHandler.RegisterCallbackRoutes(internal)
	}

	wsGroup := ginRouter.Group("/ws")
	wsGroup.Use(middleware.AuthMiddleware())
	{
		wsGroup.GET("", wsHandler.ServeWS)
	}
	logger.Info("WebSocket route /ws registered")
}
