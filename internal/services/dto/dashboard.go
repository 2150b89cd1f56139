package dto

import (
	"policytracker/internal/models"
	"policytracker/internal/repositories"
)

// DashboardSummary backs the main dashboard widgets.
type DashboardSummary struct {
	RenewalsDue    []models.Policy               `json:"renewals_due"`
	FollowUpsDue   []models.Client               `json:"follow_ups_due"`
	Commission     *repositories.CommissionStats `json:"commission"`
	RecentPolicies []models.Policy               `json:"recent_policies"`
	PolicyCount    int64                         `json:"policy_count"`
	ClientCount    int                           `json:"client_count"`
}
