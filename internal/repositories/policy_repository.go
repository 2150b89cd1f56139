package repositories

import (
	"errors"
	"time"

	"policytracker/internal/models"

	"gorm.io/gorm"
)

var ErrPolicyNotFound = errors.New("policy not found")

// CommissionStats aggregates earned commission for the dashboard.
type CommissionStats struct {
	MonthTotal float64 `json:"month_total"`
	YearTotal  float64 `json:"year_total"`
	AllTime    float64 `json:"all_time"`
}

type PolicyRepository interface {
	Create(db *gorm.DB, policy *models.Policy) error
	FindByID(db *gorm.DB, userID, id string) (*models.Policy, error)
	FindByUser(db *gorm.DB, userID string) ([]models.Policy, error)
	FindByClient(db *gorm.DB, userID, clientID string) ([]models.Policy, error)
	FindRecent(db *gorm.DB, userID string, limit int) ([]models.Policy, error)
	FindRenewalsDue(db *gorm.DB, userID string, within time.Duration) ([]models.Policy, error)
	CountByUser(db *gorm.DB, userID string) (int64, error)
	GetCommissionStats(db *gorm.DB, userID string, now time.Time) (*CommissionStats, error)
	Update(db *gorm.DB, policy *models.Policy) error
	Delete(db *gorm.DB, userID, id string) error
}

type policyRepository struct{}

func NewPolicyRepository() PolicyRepository {
	return &policyRepository{}
}

func (r *policyRepository) Create(db *gorm.DB, policy *models.Policy) error {
	return db.Create(policy).Error
}

func (r *policyRepository) FindByID(db *gorm.DB, userID, id string) (*models.Policy, error) {
	var policy models.Policy
	err := db.Preload("Client").First(&policy, "id = ? AND user_id = ?", id, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPolicyNotFound
	}
	return &policy, err
}

func (r *policyRepository) FindByUser(db *gorm.DB, userID string) ([]models.Policy, error) {
	var policies []models.Policy
	err := db.Preload("Client").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&policies).Error
	return policies, err
}

func (r *policyRepository) FindByClient(db *gorm.DB, userID, clientID string) ([]models.Policy, error) {
	var policies []models.Policy
	err := db.Where("user_id = ? AND client_id = ?", userID, clientID).
		Order("end_date asc").
		Find(&policies).Error
	return policies, err
}

func (r *policyRepository) FindRecent(db *gorm.DB, userID string, limit int) ([]models.Policy, error) {
	var policies []models.Policy
	err := db.Preload("Client").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&policies).Error
	return policies, err
}

// FindRenewalsDue returns active policies whose end date falls inside
// the window [now, now+within].
func (r *policyRepository) FindRenewalsDue(db *gorm.DB, userID string, within time.Duration) ([]models.Policy, error) {
	now := time.Now()
	var policies []models.Policy
	err := db.Preload("Client").
		Where("user_id = ? AND status = ? AND end_date BETWEEN ? AND ?",
			userID, models.PolicyStatusActive, now, now.Add(within)).
		Order("end_date asc").
		Find(&policies).Error
	return policies, err
}

// CountByUser is the live policy count consumed by the quota check.
// Soft-deleted rows are excluded by gorm's default scope.
func (r *policyRepository) CountByUser(db *gorm.DB, userID string) (int64, error) {
	var count int64
	err := db.Model(&models.Policy{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *policyRepository) GetCommissionStats(db *gorm.DB, userID string, now time.Time) (*CommissionStats, error) {
	stats := &CommissionStats{}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())

	err := db.Model(&models.Policy{}).
		Where("user_id = ? AND created_at >= ?", userID, monthStart).
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&stats.MonthTotal).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Policy{}).
		Where("user_id = ? AND created_at >= ?", userID, yearStart).
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&stats.YearTotal).Error
	if err != nil {
		return nil, err
	}

	err = db.Model(&models.Policy{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(commission_amount), 0)").
		Scan(&stats.AllTime).Error
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (r *policyRepository) Update(db *gorm.DB, policy *models.Policy) error {
	return db.Save(policy).Error
}

func (r *policyRepository) Delete(db *gorm.DB, userID, id string) error {
	res := db.Delete(&models.Policy{}, "id = ? AND user_id = ?", id, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrPolicyNotFound
	}
	return nil
}
