package models

import "time"

// Policy is the central CRM record. Commission fields are stored as
// entered; the dashboard aggregates them per period.
type Policy struct {
	BaseModelWithDeleted
	UserID            string       `gorm:"type:uuid;not null;index" json:"user_id"`
	ClientID          string       `gorm:"type:uuid;not null;index" json:"client_id"`
	PolicyNumber      string       `gorm:"not null;index" json:"policy_number"`
	Insurer           string       `gorm:"not null" json:"insurer"`
	PolicyType        string       `gorm:"not null" json:"policy_type"` // "life", "health", "motor", ...
	PremiumAmount     float64      `gorm:"not null" json:"premium_amount"`
	SumAssured        float64      `json:"sum_assured"`
	CommissionPercent float64      `json:"commission_percent"`
	CommissionAmount  float64      `json:"commission_amount"`
	StartDate         time.Time    `gorm:"not null" json:"start_date"`
	EndDate           time.Time    `gorm:"not null;index" json:"end_date"`
	Status            PolicyStatus `gorm:"type:varchar(20);default:'active'" json:"status"`

	Client *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`
}
