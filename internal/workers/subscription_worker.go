package workers

import (
	"context"
	"time"

	"policytracker/internal/logger"
	"policytracker/internal/repositories"
	"policytracker/internal/services"

	"gorm.io/gorm"
)

const (
	expiryCheckInterval = 6 * time.Hour
	pruneInterval       = 24 * time.Hour

	// rateLimitRetention keeps closed windows around briefly for
	// debugging before they are pruned.
	rateLimitRetention = 48 * time.Hour
)

// SubscriptionWorker runs the periodic maintenance loops: expiring
// lapsed subscriptions and pruning old rate-limit windows.
type SubscriptionWorker struct {
	db              *gorm.DB
	subscriptionSvc services.SubscriptionService
	rateLimitRepo   repositories.RateLimitRepository
}

func NewSubscriptionWorker(
	db *gorm.DB,
	subscriptionSvc services.SubscriptionService,
	rateLimitRepo repositories.RateLimitRepository,
) *SubscriptionWorker {
	return &SubscriptionWorker{
		db:              db,
		subscriptionSvc: subscriptionSvc,
		rateLimitRepo:   rateLimitRepo,
	}
}

func (w *SubscriptionWorker) Start(ctx context.Context) {
	go w.expireSubscriptions(ctx)
	go w.pruneRateLimits(ctx)
}

func (w *SubscriptionWorker) expireSubscriptions(ctx context.Context) {
	ticker := time.NewTicker(expiryCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription expiry loop stopped")
			return
		case <-ticker.C:
			expired, err := w.subscriptionSvc.ProcessExpired(w.db)
			if err != nil {
				logger.WorkerLog("subscription", "expire-sweep", err)
			} else if expired > 0 {
				logger.Info("marked subscriptions as expired", "count", expired)
			}
		}
	}
}

func (w *SubscriptionWorker) pruneRateLimits(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("rate limit prune loop stopped")
			return
		case <-ticker.C:
			pruned, err := w.rateLimitRepo.PruneBefore(w.db, time.Now().Add(-rateLimitRetention))
			if err != nil {
				logger.WorkerLog("rate-limit", "prune", err)
			} else if pruned > 0 {
				logger.Info("pruned rate limit windows", "count", pruned)
			}
		}
	}
}
