package services

import (
	"context"
	"time"

	"policytracker/internal/logger"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"
	"policytracker/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	renewalWindow   = 30 * 24 * time.Hour
	followUpWindow  = 7 * 24 * time.Hour
	recentPolicyCap = 5
)

type DashboardService interface {
	Summary(ctx context.Context, db *gorm.DB, userID string) (*dto.DashboardSummary, error)
}

type dashboardService struct {
	policyRepo repositories.PolicyRepository
	clientRepo repositories.ClientRepository
}

func NewDashboardService(
	policyRepo repositories.PolicyRepository,
	clientRepo repositories.ClientRepository,
) DashboardService {
	return &dashboardService{
		policyRepo: policyRepo,
		clientRepo: clientRepo,
	}
}

// Summary assembles the widget payload in one call. Widgets degrade
// independently: a failing aggregate is logged and left empty rather
// than failing the whole dashboard.
func (s *dashboardService) Summary(ctx context.Context, db *gorm.DB, userID string) (*dto.DashboardSummary, error) {
	summary := &dto.DashboardSummary{}

	renewals, err := s.policyRepo.FindRenewalsDue(db, userID, renewalWindow)
	if err != nil {
		logger.CtxWithError(ctx, "renewals widget failed", err, "user_id", userID)
	} else {
		summary.RenewalsDue = renewals
	}

	followUps, err := s.clientRepo.FindFollowUpsDue(db, userID, time.Now().Add(followUpWindow))
	if err != nil {
		logger.CtxWithError(ctx, "follow-ups widget failed", err, "user_id", userID)
	} else {
		summary.FollowUpsDue = followUps
	}

	commission, err := s.policyRepo.GetCommissionStats(db, userID, time.Now())
	if err != nil {
		logger.CtxWithError(ctx, "commission widget failed", err, "user_id", userID)
	} else {
		summary.Commission = commission
	}

	recent, err := s.policyRepo.FindRecent(db, userID, recentPolicyCap)
	if err != nil {
		logger.CtxWithError(ctx, "recent policies widget failed", err, "user_id", userID)
	} else {
		summary.RecentPolicies = recent
	}

	count, err := s.policyRepo.CountByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	summary.PolicyCount = count

	clients, err := s.clientRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	summary.ClientCount = len(clients)

	return summary, nil
}
