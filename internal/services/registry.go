package services

import (
	"policytracker/internal/email"
	"policytracker/internal/storage"
)

// ServiceContainer holds every service the application wires up.
type ServiceContainer struct {
	AuthService         AuthService
	ClientService       ClientService
	PolicyService       PolicyService
	UsageService        UsageService
	SubscriptionService SubscriptionService
	PaymentService      PaymentService
	DashboardService    DashboardService
	NotificationService NotificationService
	UploadService       UploadService
	ReportService       ReportService
	EmailSender         email.Sender
	Storage             storage.Storage
}
