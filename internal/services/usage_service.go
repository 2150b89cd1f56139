package services

import (
	"context"
	"time"

	"policytracker/internal/logger"
	"policytracker/internal/models"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"

	"gorm.io/gorm"
)

// UsageService meters per-user monthly consumption against tier limits.
// The predicate methods never return errors: any remote failure is
// logged and surfaced as false, so callers fail closed.
type UsageService interface {
	FetchUsage(ctx context.Context, db *gorm.DB, userID string) (*dto.UsageSummary, error)

	CanAddPolicy(ctx context.Context, db *gorm.DB, userID string) bool
	CanUseOcr(ctx context.Context, db *gorm.DB, userID string) bool
	CanUploadFile(ctx context.Context, db *gorm.DB, userID string, size int64) bool

	// IncrementOcrUsage returns false without mutating when the tier
	// ceiling is already reached.
	IncrementOcrUsage(ctx context.Context, db *gorm.DB, userID string) bool

	// AddStorageUsage follows the same fail-closed contract, gated on
	// the storage ceiling.
	AddStorageUsage(ctx context.Context, db *gorm.DB, userID string, size int64) bool

	// ReleaseStorageUsage returns freed bytes to the month's quota. It is
	// never gated: a refund must not fail on the ceiling.
	ReleaseStorageUsage(ctx context.Context, db *gorm.DB, userID string, size int64)

	// RecordBackup stamps last_backup_at for the current month.
	RecordBackup(ctx context.Context, db *gorm.DB, userID string) error

	// Limits resolves the tier limits for the user's current state.
	Limits(db *gorm.DB, userID string) models.TierLimits
}

type usageService struct {
	usageRepo       repositories.UsageRepository
	policyRepo      repositories.PolicyRepository
	subscriptionSvc SubscriptionService
}

func NewUsageService(
	usageRepo repositories.UsageRepository,
	policyRepo repositories.PolicyRepository,
	subscriptionSvc SubscriptionService,
) UsageService {
	return &usageService{
		usageRepo:       usageRepo,
		policyRepo:      policyRepo,
		subscriptionSvc: subscriptionSvc,
	}
}

func (s *usageService) Limits(db *gorm.DB, userID string) models.TierLimits {
	return models.LimitsForTier(s.subscriptionSvc.IsSubscribed(db, userID))
}

func (s *usageService) FetchUsage(ctx context.Context, db *gorm.DB, userID string) (*dto.UsageSummary, error) {
	monthYear := models.CurrentMonthYear(time.Now())

	record, err := s.usageRepo.GetOrCreate(db, userID, monthYear)
	if err != nil {
		return nil, err
	}

	// Policy count is computed live, never stored in the usage row.
	policyCount, err := s.policyRepo.CountByUser(db, userID)
	if err != nil {
		return nil, err
	}

	subscribed := s.subscriptionSvc.IsSubscribed(db, userID)
	limits := models.LimitsForTier(subscribed)

	return &dto.UsageSummary{
		MonthYear:         monthYear,
		Subscribed:        subscribed,
		PolicyCount:       policyCount,
		OcrScansUsed:      record.OcrScansUsed,
		StorageUsedBytes:  record.StorageUsedBytes,
		Limits:            limits,
		PolicyPercentage:  models.GetUsagePercentage(policyCount, limits.MaxPolicies),
		OcrPercentage:     models.GetUsagePercentage(int64(record.OcrScansUsed), limits.MaxOcrScans),
		StoragePercentage: models.GetUsagePercentage(record.StorageUsedBytes, limits.MaxStorageBytes),
		CanAddPolicy:      models.WithinLimit(policyCount, limits.MaxPolicies),
		CanUseOcr:         models.WithinLimit(int64(record.OcrScansUsed), limits.MaxOcrScans),
	}, nil
}

func (s *usageService) CanAddPolicy(ctx context.Context, db *gorm.DB, userID string) bool {
	limits := s.Limits(db, userID)

	count, err := s.policyRepo.CountByUser(db, userID)
	if err != nil {
		logger.CtxWithError(ctx, "policy count failed, denying quota", err, "user_id", userID)
		return false
	}

	return models.WithinLimit(count, limits.MaxPolicies)
}

func (s *usageService) CanUseOcr(ctx context.Context, db *gorm.DB, userID string) bool {
	limits := s.Limits(db, userID)
	if limits.MaxOcrScans == models.Unlimited {
		return true
	}

	record, err := s.usageRepo.GetOrCreate(db, userID, models.CurrentMonthYear(time.Now()))
	if err != nil {
		logger.CtxWithError(ctx, "usage read failed, denying OCR", err, "user_id", userID)
		return false
	}

	return models.WithinLimit(int64(record.OcrScansUsed), limits.MaxOcrScans)
}

func (s *usageService) CanUploadFile(ctx context.Context, db *gorm.DB, userID string, size int64) bool {
	limits := s.Limits(db, userID)
	if limits.MaxStorageBytes == models.Unlimited {
		return true
	}

	record, err := s.usageRepo.GetOrCreate(db, userID, models.CurrentMonthYear(time.Now()))
	if err != nil {
		logger.CtxWithError(ctx, "usage read failed, denying upload", err, "user_id", userID)
		return false
	}

	return record.StorageUsedBytes+size <= limits.MaxStorageBytes
}

// The guard is re-checked inside the UPDATE statement, so two devices
// racing on the last scan cannot both win.
func (s *usageService) IncrementOcrUsage(ctx context.Context, db *gorm.DB, userID string) bool {
	limits := s.Limits(db, userID)
	monthYear := models.CurrentMonthYear(time.Now())

	if _, err := s.usageRepo.GetOrCreate(db, userID, monthYear); err != nil {
		logger.CtxWithError(ctx, "usage record create failed", err, "user_id", userID)
		return false
	}

	ok, err := s.usageRepo.IncrementOcrScans(db, userID, monthYear, limits.MaxOcrScans)
	if err != nil {
		logger.CtxWithError(ctx, "ocr increment failed", err, "user_id", userID)
		return false
	}
	if !ok {
		logger.CtxWarn(ctx, "ocr quota reached", "user_id", userID, "limit", limits.MaxOcrScans)
	}
	return ok
}

func (s *usageService) AddStorageUsage(ctx context.Context, db *gorm.DB, userID string, size int64) bool {
	if size < 0 {
		return false
	}

	limits := s.Limits(db, userID)
	monthYear := models.CurrentMonthYear(time.Now())

	if _, err := s.usageRepo.GetOrCreate(db, userID, monthYear); err != nil {
		logger.CtxWithError(ctx, "usage record create failed", err, "user_id", userID)
		return false
	}

	ok, err := s.usageRepo.AddStorageBytes(db, userID, monthYear, size, limits.MaxStorageBytes)
	if err != nil {
		logger.CtxWithError(ctx, "storage increment failed", err, "user_id", userID)
		return false
	}
	if !ok {
		logger.CtxWarn(ctx, "storage quota reached", "user_id", userID, "size", size)
	}
	return ok
}

func (s *usageService) ReleaseStorageUsage(ctx context.Context, db *gorm.DB, userID string, size int64) {
	if size <= 0 {
		return
	}

	monthYear := models.CurrentMonthYear(time.Now())
	if _, err := s.usageRepo.AddStorageBytes(db, userID, monthYear, -size, models.Unlimited); err != nil {
		logger.CtxWithError(ctx, "storage release failed", err, "user_id", userID, "size", size)
	}
}

func (s *usageService) RecordBackup(ctx context.Context, db *gorm.DB, userID string) error {
	return s.usageRepo.SetLastBackupAt(db, userID, models.CurrentMonthYear(time.Now()), time.Now())
}
