package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"policytracker/internal/models"
	"policytracker/internal/payments"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"
	"policytracker/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakePaymentRepo struct {
	created   []*models.PaymentRequest
	createErr error
}

func (f *fakePaymentRepo) Create(db *gorm.DB, payment *models.PaymentRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, payment)
	return nil
}

func (f *fakePaymentRepo) FindByOrderID(db *gorm.DB, orderID string) (*models.PaymentRequest, error) {
	for _, p := range f.created {
		if p.OrderID == orderID {
			return p, nil
		}
	}
	return nil, repositories.ErrPaymentNotFound
}

func (f *fakePaymentRepo) FindByUser(db *gorm.DB, userID string) ([]models.PaymentRequest, error) {
	var out []models.PaymentRequest
	for _, p := range f.created {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakePaymentRepo) UpdateStatus(db *gorm.DB, orderID string, status models.PaymentStatus, completedAt *time.Time) error {
	for _, p := range f.created {
		if p.OrderID == orderID {
			p.Status = status
			p.CompletedAt = completedAt
			return nil
		}
	}
	return repositories.ErrPaymentNotFound
}

// fakeRateLimitRepo counts per (user, function, window) like the real
// upsert.
type fakeRateLimitRepo struct {
	counts map[string]int
	err    error
}

func newFakeRateLimitRepo() *fakeRateLimitRepo {
	return &fakeRateLimitRepo{counts: make(map[string]int)}
}

func (f *fakeRateLimitRepo) IncrementWindow(db *gorm.DB, userID, functionName string, windowStart time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	k := userID + "/" + functionName + "/" + windowStart.Format(time.RFC3339)
	f.counts[k]++
	return f.counts[k], nil
}

func (f *fakeRateLimitRepo) PruneBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeUserRepo struct {
	user *models.User
}

func (f *fakeUserRepo) Create(db *gorm.DB, user *models.User) error { return nil }
func (f *fakeUserRepo) FindByID(db *gorm.DB, id string) (*models.User, error) {
	if f.user == nil {
		return nil, repositories.ErrUserNotFound
	}
	return f.user, nil
}
func (f *fakeUserRepo) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	return nil, repositories.ErrUserNotFound
}
func (f *fakeUserRepo) FindActive(db *gorm.DB) ([]models.User, error) { return nil, nil }
func (f *fakeUserRepo) Update(db *gorm.DB, user *models.User) error   { return nil }

type fakeGateway struct {
	calls   int
	err     error
	orderID string
}

func (f *fakeGateway) CreateOrder(ctx context.Context, req *payments.OrderRequest) (*payments.Order, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	id := f.orderID
	if id == "" {
		id = "order_test_1"
	}
	return &payments.Order{ID: id, Amount: req.Amount, Currency: req.Currency}, nil
}

type paymentFixture struct {
	svc       PaymentService
	payments  *fakePaymentRepo
	rateLimit *fakeRateLimitRepo
	gateway   *fakeGateway
	subs      *fakeSubscriptionService
}

func newPaymentFixture() *paymentFixture {
	paymentRepo := &fakePaymentRepo{}
	rateLimitRepo := newFakeRateLimitRepo()
	gateway := &fakeGateway{}
	subs := &fakeSubscriptionService{}
	userRepo := &fakeUserRepo{user: &models.User{
		Email:    "asha@example.com",
		FullName: "Asha",
	}}

	svc := NewPaymentService(
		paymentRepo,
		rateLimitRepo,
		userRepo,
		subs,
		gateway,
		"rzp_test_key",
		payments.NewPayUClient("merchant-key", "merchant-salt", ""),
		"https://app.example.com/api/v1",
	)

	return &paymentFixture{
		svc:       svc,
		payments:  paymentRepo,
		rateLimit: rateLimitRepo,
		gateway:   gateway,
		subs:      subs,
	}
}

func TestResolvePrice(t *testing.T) {
	t.Parallel()

	amount, cycle, err := ResolvePrice("pro", "monthly")
	require.NoError(t, err)
	assert.Equal(t, int64(29900), amount)
	assert.Equal(t, models.BillingMonthly, cycle)

	amount, cycle, err = ResolvePrice("pro", "yearly")
	require.NoError(t, err)
	assert.Equal(t, int64(299900), amount)
	assert.Equal(t, models.BillingYearly, cycle)

	_, cycle, err = ResolvePrice("pro", "")
	require.NoError(t, err)
	assert.Equal(t, models.BillingMonthly, cycle, "empty cycle defaults to monthly")

	_, _, err = ResolvePrice("enterprise", "monthly")
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPCode)

	_, _, err = ResolvePrice("pro", "weekly")
	require.Error(t, err)
}

func TestCreateRazorpayOrder(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	resp, err := f.svc.CreateRazorpayOrder(context.Background(), nil, "u1", &dto.CreateOrderRequest{
		PlanType:     "pro",
		BillingCycle: "monthly",
	})
	require.NoError(t, err)

	assert.Equal(t, "order_test_1", resp.OrderID)
	assert.Equal(t, int64(29900), resp.Amount)
	assert.Equal(t, "INR", resp.Currency)
	assert.Equal(t, "rzp_test_key", resp.KeyID)

	require.Len(t, f.payments.created, 1)
	row := f.payments.created[0]
	assert.Equal(t, models.GatewayRazorpay, row.Gateway)
	assert.Equal(t, models.PaymentStatusPending, row.Status)
	assert.Equal(t, int64(29900), row.Amount)
}

func TestCreateRazorpayOrderUnknownPlanSkipsGateway(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	_, err := f.svc.CreateRazorpayOrder(context.Background(), nil, "u1", &dto.CreateOrderRequest{
		PlanType: "enterprise",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPCode)
	assert.Zero(t, f.gateway.calls, "an invalid plan never reaches the gateway")
	assert.Empty(t, f.payments.created)
}

func TestCreateRazorpayOrderGatewayFailureLeavesNoRow(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	f.gateway.err = errors.New("gateway timeout")

	_, err := f.svc.CreateRazorpayOrder(context.Background(), nil, "u1", &dto.CreateOrderRequest{
		PlanType: "pro",
	})
	require.Error(t, err)
	assert.Empty(t, f.payments.created, "no pending row without a gateway order")
}

func TestCreateOrderRateLimited(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	for i := 0; i < RateLimitMax; i++ {
		f.gateway.orderID = "order_" + string(rune('a'+i))
		_, err := f.svc.CreateRazorpayOrder(ctx, nil, "u1", &dto.CreateOrderRequest{PlanType: "pro"})
		require.NoError(t, err, "attempt %d is inside the hourly cap", i+1)
	}

	callsBefore := f.gateway.calls
	_, err := f.svc.CreateRazorpayOrder(ctx, nil, "u1", &dto.CreateOrderRequest{PlanType: "pro"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 429, appErr.HTTPCode)
	assert.Equal(t, callsBefore, f.gateway.calls, "a rate-limited attempt never reaches the gateway")
	assert.Len(t, f.payments.created, RateLimitMax)
}

func TestRateLimitIsPerFunction(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	for i := 0; i < RateLimitMax; i++ {
		_, err := f.svc.CreateRazorpayOrder(ctx, nil, "u1", &dto.CreateOrderRequest{PlanType: "pro"})
		require.NoError(t, err)
	}

	// The PayU counter is independent of the Razorpay one.
	_, err := f.svc.CreatePayUOrder(ctx, nil, "u1", &dto.CreateOrderRequest{PlanType: "pro"})
	assert.NoError(t, err)
}

func TestCreatePayUOrder(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	resp, err := f.svc.CreatePayUOrder(context.Background(), nil, "u1", &dto.CreateOrderRequest{
		PlanType:     "pro",
		BillingCycle: "yearly",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.TxnID)
	assert.Equal(t, int64(299900), resp.Amount)
	assert.NotEmpty(t, resp.Fields["hash"])
	assert.Equal(t, "https://app.example.com/api/v1/payments/payu/success", resp.Fields["surl"])

	// PayU rows are persisted before the redirect.
	require.Len(t, f.payments.created, 1)
	assert.Equal(t, models.GatewayPayU, f.payments.created[0].Gateway)
	assert.Equal(t, resp.TxnID, f.payments.created[0].OrderID)
}

func TestHandleCallbackActivatesPlan(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	_, err := f.svc.CreateRazorpayOrder(ctx, nil, "u1", &dto.CreateOrderRequest{PlanType: "pro"})
	require.NoError(t, err)

	err = f.svc.HandleCallback(ctx, nil, &dto.PaymentCallbackRequest{
		OrderID: "order_test_1",
		Success: true,
	})
	require.NoError(t, err)

	assert.Equal(t, models.PaymentStatusCompleted, f.payments.created[0].Status)
	assert.NotNil(t, f.payments.created[0].CompletedAt)
	assert.True(t, f.subs.subscribed, "a successful callback activates the plan")
}

func TestHandleCallbackIdempotent(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	_, err := f.svc.CreateRazorpayOrder(ctx, nil, "u1", &dto.CreateOrderRequest{PlanType: "pro"})
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleCallback(ctx, nil, &dto.PaymentCallbackRequest{OrderID: "order_test_1", Success: true}))

	// A retried failure callback must not flip a settled row back.
	require.NoError(t, f.svc.HandleCallback(ctx, nil, &dto.PaymentCallbackRequest{OrderID: "order_test_1", Success: false}))
	assert.Equal(t, models.PaymentStatusCompleted, f.payments.created[0].Status)
}

func TestHandleCallbackFailureKeepsFreeTier(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()
	ctx := context.Background()

	_, err := f.svc.CreateRazorpayOrder(ctx, nil, "u1", &dto.CreateOrderRequest{PlanType: "pro"})
	require.NoError(t, err)

	require.NoError(t, f.svc.HandleCallback(ctx, nil, &dto.PaymentCallbackRequest{OrderID: "order_test_1", Success: false}))

	assert.Equal(t, models.PaymentStatusFailed, f.payments.created[0].Status)
	assert.False(t, f.subs.subscribed)
}

func TestHandleCallbackUnknownOrder(t *testing.T) {
	t.Parallel()

	f := newPaymentFixture()

	err := f.svc.HandleCallback(context.Background(), nil, &dto.PaymentCallbackRequest{OrderID: "order_missing"})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPCode)
}
