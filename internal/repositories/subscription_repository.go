package repositories

import (
	"errors"
	"time"

	"policytracker/internal/models"

	"gorm.io/gorm"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

type SubscriptionRepository interface {
	FindByUser(db *gorm.DB, userID string) (*models.Subscription, error)
	// Upsert creates or replaces the user's single subscription row.
	Upsert(db *gorm.DB, sub *models.Subscription) error
	// MarkExpired flips active rows whose end date has passed; returns
	// the number of rows changed.
	MarkExpired(db *gorm.DB) (int64, error)
}

type subscriptionRepository struct{}

func NewSubscriptionRepository() SubscriptionRepository {
	return &subscriptionRepository{}
}

func (r *subscriptionRepository) FindByUser(db *gorm.DB, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := db.First(&sub, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	return &sub, err
}

func (r *subscriptionRepository) Upsert(db *gorm.DB, sub *models.Subscription) error {
	return db.Exec(`
		INSERT INTO subscriptions (id, user_id, plan_name, status, start_date, end_date, created_at, updated_at)
		VALUES (uuid_generate_v4(), ?, ?, ?, ?, ?, NOW(), NOW())
		ON CONFLICT (user_id)
		DO UPDATE SET plan_name = EXCLUDED.plan_name,
		              status = EXCLUDED.status,
		              start_date = EXCLUDED.start_date,
		              end_date = EXCLUDED.end_date,
		              updated_at = NOW()
	`, sub.UserID, sub.PlanName, sub.Status, sub.StartDate, sub.EndDate).Error
}

func (r *subscriptionRepository) MarkExpired(db *gorm.DB) (int64, error) {
	res := db.Model(&models.Subscription{}).
		Where("status = ? AND end_date < ?", models.SubscriptionStatusActive, time.Now()).
		Update("status", models.SubscriptionStatusExpired)
	return res.RowsAffected, res.Error
}
