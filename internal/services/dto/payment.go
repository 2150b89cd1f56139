package dto

// CreateOrderRequest is the body of both gateway endpoints. Amounts are
// never taken from the client; the plan type resolves against the
// server-side price table.
type CreateOrderRequest struct {
	PlanType     string `json:"planType"`
	BillingCycle string `json:"billingCycle"`
}

type RazorpayOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

type PayUOrderResponse struct {
	TxnID      string            `json:"txnid"`
	PaymentURL string            `json:"paymentUrl"`
	Amount     int64             `json:"amount"`
	Currency   string            `json:"currency"`
	Fields     map[string]string `json:"fields"`
}

// PaymentCallbackRequest records the verification outcome reported by
// the out-of-band verification flow.
type PaymentCallbackRequest struct {
	OrderID string `json:"order_id" validate:"required"`
	Success bool   `json:"success"`
}
