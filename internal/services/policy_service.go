package services

import (
	"context"
	"encoding/json"

	"policytracker/internal/logger"
	"policytracker/internal/models"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"
	"policytracker/pkg/apperrors"
	"policytracker/ws"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type PolicyService interface {
	// CreatePolicy is quota-gated: free-tier users are capped at the
	// tier's policy ceiling.
	CreatePolicy(ctx context.Context, db *gorm.DB, userID string, req *dto.CreatePolicyRequest) (*models.Policy, error)
	GetPolicy(db *gorm.DB, userID, policyID string) (*models.Policy, error)
	ListPolicies(db *gorm.DB, userID string) ([]models.Policy, error)
	UpdatePolicy(db *gorm.DB, userID, policyID string, req *dto.UpdatePolicyRequest) (*models.Policy, error)
	DeletePolicy(db *gorm.DB, userID, policyID string) error
}

type policyService struct {
	policyRepo       repositories.PolicyRepository
	clientRepo       repositories.ClientRepository
	notificationRepo repositories.NotificationRepository
	usageSvc         UsageService
	pushManager      *ws.Manager
}

func NewPolicyService(
	policyRepo repositories.PolicyRepository,
	clientRepo repositories.ClientRepository,
	notificationRepo repositories.NotificationRepository,
	usageSvc UsageService,
	pushManager *ws.Manager,
) PolicyService {
	return &policyService{
		policyRepo:       policyRepo,
		clientRepo:       clientRepo,
		notificationRepo: notificationRepo,
		usageSvc:         usageSvc,
		pushManager:      pushManager,
	}
}

func (s *policyService) CreatePolicy(ctx context.Context, db *gorm.DB, userID string, req *dto.CreatePolicyRequest) (*models.Policy, error) {
	if !s.usageSvc.CanAddPolicy(ctx, db, userID) {
		return nil, apperrors.ErrLimitExceeded("policies",
			"Policy limit reached for your plan, upgrade to add more")
	}

	if !req.EndDate.After(req.StartDate) {
		return nil, apperrors.NewBadRequestError("end_date must be after start_date")
	}

	// The client must belong to the same agent.
	if _, err := s.clientRepo.FindByID(db, userID, req.ClientID); err != nil {
		if apperrors.Is(err, repositories.ErrClientNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	commission := req.PremiumAmount * req.CommissionPercent / 100

	policy := &models.Policy{
		UserID:            userID,
		ClientID:          req.ClientID,
		PolicyNumber:      req.PolicyNumber,
		Insurer:           req.Insurer,
		PolicyType:        req.PolicyType,
		PremiumAmount:     req.PremiumAmount,
		SumAssured:        req.SumAssured,
		CommissionPercent: req.CommissionPercent,
		CommissionAmount:  commission,
		StartDate:         req.StartDate,
		EndDate:           req.EndDate,
		Status:            models.PolicyStatusActive,
	}
	if err := s.policyRepo.Create(db, policy); err != nil {
		return nil, apperrors.InternalError(err)
	}

	s.notifyPolicyCreated(ctx, db, policy)
	return policy, nil
}

// notifyPolicyCreated persists a notification and pushes the insert
// event to the agent's live dashboards. Failures here are logged, never
// surfaced: the policy itself is already committed.
func (s *policyService) notifyPolicyCreated(ctx context.Context, db *gorm.DB, policy *models.Policy) {
	data, _ := json.Marshal(map[string]string{"policy_id": policy.ID})
	notification := &models.Notification{
		UserID:  policy.UserID,
		Type:    models.NotificationPolicyCreated,
		Title:   "Policy added",
		Message: "Policy " + policy.PolicyNumber + " was added",
		Data:    datatypes.JSON(data),
	}
	if err := s.notificationRepo.Create(db, notification); err != nil {
		logger.CtxWithError(ctx, "failed to persist policy notification", err, "policy_id", policy.ID)
	}

	if s.pushManager != nil {
		s.pushManager.PushToUser(policy.UserID, ws.Event{
			Type: models.NotificationPolicyCreated,
			Data: policy,
		})
	}
}

func (s *policyService) GetPolicy(db *gorm.DB, userID, policyID string) (*models.Policy, error) {
	policy, err := s.policyRepo.FindByID(db, userID, policyID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPolicyNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}
	return policy, nil
}

func (s *policyService) ListPolicies(db *gorm.DB, userID string) ([]models.Policy, error) {
	policies, err := s.policyRepo.FindByUser(db, userID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return policies, nil
}

func (s *policyService) UpdatePolicy(db *gorm.DB, userID, policyID string, req *dto.UpdatePolicyRequest) (*models.Policy, error) {
	policy, err := s.policyRepo.FindByID(db, userID, policyID)
	if err != nil {
		if apperrors.Is(err, repositories.ErrPolicyNotFound) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.InternalError(err)
	}

	if req.PolicyNumber != nil {
		policy.PolicyNumber = *req.PolicyNumber
	}
	if req.Insurer != nil {
		policy.Insurer = *req.Insurer
	}
	if req.PolicyType != nil {
		policy.PolicyType = *req.PolicyType
	}
	if req.PremiumAmount != nil {
		policy.PremiumAmount = *req.PremiumAmount
	}
	if req.SumAssured != nil {
		policy.SumAssured = *req.SumAssured
	}
	if req.CommissionPercent != nil {
		policy.CommissionPercent = *req.CommissionPercent
	}
	if req.StartDate != nil {
		policy.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		policy.EndDate = *req.EndDate
	}
	if req.Status != nil {
		policy.Status = models.PolicyStatus(*req.Status)
	}

	policy.CommissionAmount = policy.PremiumAmount * policy.CommissionPercent / 100

	if err := s.policyRepo.Update(db, policy); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return policy, nil
}

func (s *policyService) DeletePolicy(db *gorm.DB, userID, policyID string) error {
	err := s.policyRepo.Delete(db, userID, policyID)
	if apperrors.Is(err, repositories.ErrPolicyNotFound) {
		return apperrors.ErrNotFound(err)
	}
	return err
}
