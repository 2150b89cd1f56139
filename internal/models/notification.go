package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	NotificationPolicyCreated  = "policy_created"
	NotificationRenewalDue     = "renewal_due"
	NotificationFollowUpDue    = "follow_up_due"
	NotificationPaymentPending = "payment_pending"
)

type Notification struct {
	BaseModel
	UserID  string         `gorm:"not null;index" json:"user_id"`
	Type    string         `gorm:"not null" json:"type"`
	Title   string         `gorm:"not null" json:"title"`
	Message string         `json:"message"`
	Data    datatypes.JSON `gorm:"type:jsonb" json:"data,omitempty"` // {"policy_id": "...", ...}
	IsRead  bool           `gorm:"default:false" json:"is_read"`
	ReadAt  *time.Time     `json:"read_at,omitempty"`
}
