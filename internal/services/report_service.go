package services

import (
	"context"
	"time"

	"policytracker/internal/email"
	"policytracker/internal/logger"
	"policytracker/internal/repositories"

	"gorm.io/gorm"
)

// ReportService builds and mails the per-agent monthly summary. It is
// triggered by the scheduled endpoint, not by user traffic.
type ReportService interface {
	// SendMonthlyReports mails every active user and returns how many
	// reports went out. One failing recipient does not stop the run.
	SendMonthlyReports(ctx context.Context, db *gorm.DB) (int, error)
}

type reportService struct {
	userRepo   repositories.UserRepository
	policyRepo repositories.PolicyRepository
	usageRepo  repositories.UsageRepository
	sender     email.Sender
	usageSvc   UsageService
}

func NewReportService(
	userRepo repositories.UserRepository,
	policyRepo repositories.PolicyRepository,
	usageRepo repositories.UsageRepository,
	sender email.Sender,
	usageSvc UsageService,
) ReportService {
	return &reportService{
		userRepo:   userRepo,
		policyRepo: policyRepo,
		usageRepo:  usageRepo,
		sender:     sender,
		usageSvc:   usageSvc,
	}
}

func (s *reportService) SendMonthlyReports(ctx context.Context, db *gorm.DB) (int, error) {
	users, err := s.userRepo.FindActive(db)
	if err != nil {
		return 0, err
	}

	sent := 0
	for i := range users {
		user := &users[i]
		report, err := s.buildReport(db, user.ID, user.FullName)
		if err != nil {
			logger.CtxWithError(ctx, "report build failed", err, "user_id", user.ID)
			continue
		}

		if err := s.sender.SendMonthlyReport(user.Email, report); err != nil {
			logger.CtxWithError(ctx, "report send failed", err, "user_id", user.ID)
			continue
		}

		if err := s.usageSvc.RecordBackup(ctx, db, user.ID); err != nil {
			logger.CtxWithError(ctx, "backup stamp failed", err, "user_id", user.ID)
		}
		sent++
	}

	logger.CtxInfo(ctx, "monthly reports dispatched", "sent", sent, "total", len(users))
	return sent, nil
}

func (s *reportService) buildReport(db *gorm.DB, userID, agentName string) (*email.MonthlyReport, error) {
	now := time.Now()

	stats, err := s.policyRepo.GetCommissionStats(db, userID, now)
	if err != nil {
		return nil, err
	}

	renewals, err := s.policyRepo.FindRenewalsDue(db, userID, 30*24*time.Hour)
	if err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	policies, err := s.policyRepo.FindByUser(db, userID)
	if err != nil {
		return nil, err
	}
	added := 0
	for _, p := range policies {
		if !p.CreatedAt.Before(monthStart) {
			added++
		}
	}

	usage, err := s.usageRepo.GetOrCreate(db, userID, now.Format("2006-01"))
	if err != nil {
		return nil, err
	}

	return &email.MonthlyReport{
		AgentName:        agentName,
		Month:            now.Format("January 2006"),
		PoliciesAdded:    added,
		RenewalsDue:      len(renewals),
		CommissionEarned: stats.MonthTotal,
		OcrScansUsed:     usage.OcrScansUsed,
		StorageUsedMB:    float64(usage.StorageUsedBytes) / (1024 * 1024),
	}, nil
}
