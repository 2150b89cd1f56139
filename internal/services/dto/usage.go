package dto

import "policytracker/internal/models"

// UsageSummary is the dashboard's quota widget payload.
type UsageSummary struct {
	MonthYear         string            `json:"month_year"`
	Subscribed        bool              `json:"subscribed"`
	PolicyCount       int64             `json:"policy_count"`
	OcrScansUsed      int               `json:"ocr_scans_used"`
	StorageUsedBytes  int64             `json:"storage_used_bytes"`
	Limits            models.TierLimits `json:"limits"`
	PolicyPercentage  int               `json:"policy_percentage"`
	OcrPercentage     int               `json:"ocr_percentage"`
	StoragePercentage int               `json:"storage_percentage"`
	CanAddPolicy      bool              `json:"can_add_policy"`
	CanUseOcr         bool              `json:"can_use_ocr"`
}

type SubscriptionStatusResponse struct {
	Subscribed bool   `json:"subscribed"`
	PlanName   string `json:"plan_name,omitempty"`
	Status     string `json:"status,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
}
