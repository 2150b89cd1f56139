package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"policytracker/internal/logger"
	"policytracker/internal/models"
	"policytracker/internal/payments"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"
	"policytracker/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	// RateLimitMax caps order-creation attempts per user per hour.
	RateLimitMax = 10

	FnCreateRazorpayPayment = "create-razorpay-payment"
	FnCreatePayUPayment     = "create-payu-payment"
)

// planPrices is the server-side price table in minor units (paise).
// Client-supplied amounts are never trusted.
var planPrices = map[string]map[models.BillingCycle]int64{
	"pro": {
		models.BillingMonthly: 29900,  // ₹299
		models.BillingYearly:  299900, // ₹2999
	},
}

// ResolvePrice validates the plan/cycle pair against the price table.
// An empty cycle defaults to monthly.
func ResolvePrice(planType, billingCycle string) (int64, models.BillingCycle, error) {
	cycles, ok := planPrices[planType]
	if !ok {
		return 0, "", apperrors.NewBadRequestError(fmt.Sprintf("Unknown plan type: %s", planType))
	}

	cycle := models.BillingCycle(billingCycle)
	if cycle == "" {
		cycle = models.BillingMonthly
	}

	amount, ok := cycles[cycle]
	if !ok {
		return 0, "", apperrors.NewBadRequestError(fmt.Sprintf("Unknown billing cycle: %s", billingCycle))
	}

	return amount, cycle, nil
}

type PaymentService interface {
	CreateRazorpayOrder(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateOrderRequest) (*dto.RazorpayOrderResponse, error)
	CreatePayUOrder(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateOrderRequest) (*dto.PayUOrderResponse, error)

	// HandleCallback records the verification outcome and activates the
	// plan on success. Called by the out-of-band verification flow.
	HandleCallback(ctx context.Context, db *gorm.DB, req *dto.PaymentCallbackRequest) error

	History(db *gorm.DB, userID string) ([]models.PaymentRequest, error)
}

type paymentService struct {
	paymentRepo     repositories.PaymentRepository
	rateLimitRepo   repositories.RateLimitRepository
	userRepo        repositories.UserRepository
	subscriptionSvc SubscriptionService
	razorpay        payments.OrderGateway
	razorpayKeyID   string
	payu            *payments.PayUClient
	callbackBaseURL string
}

func NewPaymentService(
	paymentRepo repositories.PaymentRepository,
	rateLimitRepo repositories.RateLimitRepository,
	userRepo repositories.UserRepository,
	subscriptionSvc SubscriptionService,
	razorpay payments.OrderGateway,
	razorpayKeyID string,
	payu *payments.PayUClient,
	callbackBaseURL string,
) PaymentService {
	return &paymentService{
		paymentRepo:     paymentRepo,
		rateLimitRepo:   rateLimitRepo,
		userRepo:        userRepo,
		subscriptionSvc: subscriptionSvc,
		razorpay:        razorpay,
		razorpayKeyID:   razorpayKeyID,
		payu:            payu,
		callbackBaseURL: callbackBaseURL,
	}
}

// checkRateLimit counts the attempt against the hourly window and
// rejects once the cap is passed. The counter moves first so that
// rejected attempts still consume the window.
func (s *paymentService) checkRateLimit(ctx context.Context, db *gorm.DB, userID, functionName string) error {
	window := models.TruncateToHour(time.Now())

	count, err := s.rateLimitRepo.IncrementWindow(db, userID, functionName, window)
	if err != nil {
		return apperrors.ErrDependencyFailure(err, "rate_limit")
	}

	if count > RateLimitMax {
		logger.CtxWarn(ctx, "payment rate limit exceeded",
			"user_id", userID, "function", functionName, "count", count)
		return apperrors.NewRateLimitedError("Too many payment attempts, try again later")
	}
	return nil
}

func (s *paymentService) CreateRazorpayOrder(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateOrderRequest) (*dto.RazorpayOrderResponse, error) {
	amount, cycle, err := ResolvePrice(req.PlanType, req.BillingCycle)
	if err != nil {
		return nil, err
	}

	if err := s.checkRateLimit(ctx, db, userID, FnCreateRazorpayPayment); err != nil {
		return nil, err
	}

	receipt := "rcpt_" + uuid.NewString()[:18]
	order, err := s.razorpay.CreateOrder(ctx, &payments.OrderRequest{
		Amount:   amount,
		Currency: "INR",
		Receipt:  receipt,
		Notes: map[string]interface{}{
			"user_id":       userID,
			"plan_type":     req.PlanType,
			"billing_cycle": string(cycle),
		},
	})
	if err != nil {
		logger.CtxWithError(ctx, "razorpay order creation failed", err, "user_id", userID)
		return nil, apperrors.ErrDependencyFailure(err, "payments")
	}

	// The row is only written after the gateway accepted the order, so
	// a gateway failure leaves nothing dangling.
	notes, _ := json.Marshal(map[string]string{"receipt": receipt})
	payment := &models.PaymentRequest{
		UserID:       userID,
		OrderID:      order.ID,
		Gateway:      models.GatewayRazorpay,
		Amount:       amount,
		Currency:     "INR",
		PlanType:     req.PlanType,
		BillingCycle: cycle,
		Status:       models.PaymentStatusPending,
		Notes:        datatypes.JSON(notes),
	}
	if err := s.paymentRepo.Create(db, payment); err != nil {
		logger.CtxWithError(ctx, "payment request persist failed", err, "order_id", order.ID)
		return nil, apperrors.ErrDependencyFailure(err, "payments")
	}

	logger.CtxInfo(ctx, "razorpay order created", "order_id", order.ID, "amount", amount)
	return &dto.RazorpayOrderResponse{
		OrderID:  order.ID,
		Amount:   amount,
		Currency: "INR",
		KeyID:    s.razorpayKeyID,
	}, nil
}

func (s *paymentService) CreatePayUOrder(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateOrderRequest) (*dto.PayUOrderResponse, error) {
	amount, cycle, err := ResolvePrice(req.PlanType, req.BillingCycle)
	if err != nil {
		return nil, err
	}

	if err := s.checkRateLimit(ctx, db, userID, FnCreatePayUPayment); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, apperrors.ErrDependencyFailure(err, "payments")
	}

	productInfo := fmt.Sprintf("PolicyTracker %s (%s)", req.PlanType, cycle)
	txn := s.payu.NewTransaction(
		amount,
		productInfo,
		user.FullName,
		user.Email,
		s.callbackBaseURL+"/payments/payu/success",
		s.callbackBaseURL+"/payments/payu/failure",
	)

	// PayU has no server-side order API; the pending row is recorded
	// before the client is redirected to the form endpoint.
	payment := &models.PaymentRequest{
		UserID:       userID,
		OrderID:      txn.TxnID,
		Gateway:      models.GatewayPayU,
		Amount:       amount,
		Currency:     "INR",
		PlanType:     req.PlanType,
		BillingCycle: cycle,
		Status:       models.PaymentStatusPending,
	}
	if err := s.paymentRepo.Create(db, payment); err != nil {
		logger.CtxWithError(ctx, "payment request persist failed", err, "txnid", txn.TxnID)
		return nil, apperrors.ErrDependencyFailure(err, "payments")
	}

	logger.CtxInfo(ctx, "payu transaction prepared", "txnid", txn.TxnID, "amount", amount)
	return &dto.PayUOrderResponse{
		TxnID:      txn.TxnID,
		PaymentURL: txn.PaymentURL,
		Amount:     amount,
		Currency:   "INR",
		Fields:     txn.Fields,
	}, nil
}

func (s *paymentService) HandleCallback(ctx context.Context, db *gorm.DB, req *dto.PaymentCallbackRequest) error {
	payment, err := s.paymentRepo.FindByOrderID(db, req.OrderID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPaymentNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.ErrDependencyFailure(err, "payments")
	}

	if payment.Status != models.PaymentStatusPending {
		// Callbacks may be retried; a settled row stays settled.
		logger.CtxInfo(ctx, "payment callback ignored, already settled",
			"order_id", req.OrderID, "status", payment.Status)
		return nil
	}

	status := models.PaymentStatusFailed
	var completedAt *time.Time
	if req.Success {
		status = models.PaymentStatusCompleted
		now := time.Now()
		completedAt = &now
	}

	if err := s.paymentRepo.UpdateStatus(db, req.OrderID, status, completedAt); err != nil {
		return apperrors.ErrDependencyFailure(err, "payments")
	}

	if req.Success {
		if err := s.subscriptionSvc.ActivatePlan(db, payment.UserID, payment.PlanType, payment.BillingCycle); err != nil {
			return apperrors.ErrDependencyFailure(err, "subscription")
		}
		logger.CtxInfo(ctx, "subscription activated", "user_id", payment.UserID, "plan", payment.PlanType)
	}

	return nil
}

func (s *paymentService) History(db *gorm.DB, userID string) ([]models.PaymentRequest, error) {
	return s.paymentRepo.FindByUser(db, userID)
}
