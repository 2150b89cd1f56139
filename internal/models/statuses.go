package models

type UserStatus string
type PolicyStatus string
type SubscriptionStatus string
type PaymentStatus string
type PaymentGateway string
type BillingCycle string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"

	PolicyStatusActive  PolicyStatus = "active"
	PolicyStatusLapsed  PolicyStatus = "lapsed"
	PolicyStatusMatured PolicyStatus = "matured"

	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusExpired   SubscriptionStatus = "expired"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"

	GatewayRazorpay PaymentGateway = "razorpay"
	GatewayPayU     PaymentGateway = "payu"

	BillingMonthly BillingCycle = "monthly"
	BillingYearly  BillingCycle = "yearly"
)
