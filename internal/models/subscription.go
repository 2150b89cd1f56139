package models

import "time"

// Subscription is the single per-user subscription row. "Subscribed"
// means status is active AND end_date is strictly in the future; an
// active row past its end date counts as free tier until the expiry
// worker flips it.
type Subscription struct {
	BaseModel
	UserID    string             `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	PlanName  string             `gorm:"not null" json:"plan_name"` // "Pro Monthly", "Pro Yearly"
	Status    SubscriptionStatus `gorm:"type:varchar(20);default:'active'" json:"status"`
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `gorm:"index" json:"end_date"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// IsSubscribed reports whether the row grants pro access at instant now.
func (s *Subscription) IsSubscribed(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.EndDate.After(now)
}
