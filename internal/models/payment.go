package models

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentRequest records one checkout attempt. The order id is issued by
// the gateway (Razorpay) or generated locally (PayU txnid). Status is
// flipped by the verification callback, never by the creation path.
type PaymentRequest struct {
	BaseModel
	UserID       string         `gorm:"type:uuid;not null;index" json:"user_id"`
	OrderID      string         `gorm:"not null;uniqueIndex" json:"order_id"`
	Gateway      PaymentGateway `gorm:"type:varchar(20);not null" json:"gateway"`
	Amount       int64          `gorm:"not null" json:"amount"` // minor units
	Currency     string         `gorm:"type:varchar(3);default:'INR'" json:"currency"`
	PlanType     string         `gorm:"not null" json:"plan_type"`
	BillingCycle BillingCycle   `gorm:"type:varchar(20);not null" json:"billing_cycle"`
	Status       PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"status"`
	Notes        datatypes.JSON `gorm:"type:jsonb" json:"notes,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

func (PaymentRequest) TableName() string {
	return "payment_requests"
}
