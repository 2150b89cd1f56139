package services

import (
	"time"

	"policytracker/internal/models"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"
	"policytracker/pkg/apperrors"

	"gorm.io/gorm"
)

type SubscriptionService interface {
	// CheckSubscription resolves the user's current tier. A missing row
	// means free tier, not an error; clients poll this endpoint while
	// payment verification completes out-of-band.
	CheckSubscription(db *gorm.DB, userID string) (*dto.SubscriptionStatusResponse, error)

	// IsSubscribed is the boolean form used by the usage tracker.
	IsSubscribed(db *gorm.DB, userID string) bool

	// ActivatePlan upserts an active subscription after a verified
	// payment.
	ActivatePlan(db *gorm.DB, userID, planType string, cycle models.BillingCycle) error

	// ProcessExpired flips active rows past their end date.
	ProcessExpired(db *gorm.DB) (int64, error)
}

type subscriptionService struct {
	subscriptionRepo repositories.SubscriptionRepository
}

func NewSubscriptionService(subscriptionRepo repositories.SubscriptionRepository) SubscriptionService {
	return &subscriptionService{subscriptionRepo: subscriptionRepo}
}

func (s *subscriptionService) CheckSubscription(db *gorm.DB, userID string) (*dto.SubscriptionStatusResponse, error) {
	sub, err := s.subscriptionRepo.FindByUser(db, userID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return &dto.SubscriptionStatusResponse{Subscribed: false}, nil
		}
		return nil, apperrors.Wrap(err, apperrors.CodeDatabaseError, "subscription",
			"Failed to load subscription", 500)
	}

	resp := &dto.SubscriptionStatusResponse{
		Subscribed: sub.IsSubscribed(time.Now()),
		PlanName:   sub.PlanName,
		Status:     string(sub.Status),
		EndDate:    sub.EndDate.Format(time.RFC3339),
	}
	return resp, nil
}

// IsSubscribed swallows lookup failures as "not subscribed": quota
// checks fail closed onto the free tier rather than erroring out.
func (s *subscriptionService) IsSubscribed(db *gorm.DB, userID string) bool {
	sub, err := s.subscriptionRepo.FindByUser(db, userID)
	if err != nil {
		return false
	}
	return sub.IsSubscribed(time.Now())
}

func (s *subscriptionService) ActivatePlan(db *gorm.DB, userID, planType string, cycle models.BillingCycle) error {
	now := time.Now()
	end := now.AddDate(0, 1, 0)
	if cycle == models.BillingYearly {
		end = now.AddDate(1, 0, 0)
	}

	sub := &models.Subscription{
		UserID:    userID,
		PlanName:  planDisplayName(planType, cycle),
		Status:    models.SubscriptionStatusActive,
		StartDate: now,
		EndDate:   end,
	}
	return s.subscriptionRepo.Upsert(db, sub)
}

func (s *subscriptionService) ProcessExpired(db *gorm.DB) (int64, error) {
	return s.subscriptionRepo.MarkExpired(db)
}

func planDisplayName(planType string, cycle models.BillingCycle) string {
	if cycle == models.BillingYearly {
		return planType + " (yearly)"
	}
	return planType + " (monthly)"
}
