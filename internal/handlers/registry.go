package handlers

// AppHandlers holds every handler the router wires up.
type AppHandlers struct {
	AuthHandler         *AuthHandler
	ClientHandler       *ClientHandler
	PolicyHandler       *PolicyHandler
	UsageHandler        *UsageHandler
	SubscriptionHandler *SubscriptionHandler
	PaymentHandler      *PaymentHandler
	DashboardHandler    *DashboardHandler
	NotificationHandler *NotificationHandler
	UploadHandler       *UploadHandler
	ReportHandler       *ReportHandler
}
