package dto

import "time"

type CreatePolicyRequest struct {
	ClientID          string    `json:"client_id" validate:"required,uuid"`
	PolicyNumber      string    `json:"policy_number" validate:"required"`
	Insurer           string    `json:"insurer" validate:"required"`
	PolicyType        string    `json:"policy_type" validate:"required,oneof=life health motor term property other"`
	PremiumAmount     float64   `json:"premium_amount" validate:"required,gt=0"`
	SumAssured        float64   `json:"sum_assured"`
	CommissionPercent float64   `json:"commission_percent" validate:"min=0,max=100"`
	StartDate         time.Time `json:"start_date" validate:"required"`
	EndDate           time.Time `json:"end_date" validate:"required"`
}

type UpdatePolicyRequest struct {
	PolicyNumber      *string    `json:"policy_number"`
	Insurer           *string    `json:"insurer"`
	PolicyType        *string    `json:"policy_type" validate:"omitempty,oneof=life health motor term property other"`
	PremiumAmount     *float64   `json:"premium_amount" validate:"omitempty,gt=0"`
	SumAssured        *float64   `json:"sum_assured"`
	CommissionPercent *float64   `json:"commission_percent" validate:"omitempty,min=0,max=100"`
	StartDate         *time.Time `json:"start_date"`
	EndDate           *time.Time `json:"end_date"`
	Status            *string    `json:"status" validate:"omitempty,oneof=active lapsed matured"`
}
