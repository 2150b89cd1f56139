package payments

import "context"

// OrderRequest is a gateway-agnostic order creation request. Amount is
// in minor units (paise).
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]interface{}
}

// Order is the gateway's answer, consumed by client-side checkout.
type Order struct {
	ID       string
	Amount   int64
	Currency string
}

// OrderGateway creates orders with an external payment provider.
type OrderGateway interface {
	CreateOrder(ctx context.Context, req *OrderRequest) (*Order, error)
}
