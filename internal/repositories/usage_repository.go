package repositories

import (
	"errors"
	"time"

	"policytracker/internal/models"

	"gorm.io/gorm"
)

var ErrUsageNotFound = errors.New("usage record not found")

type UsageRepository interface {
	// GetOrCreate returns the month's record, inserting a zeroed row on
	// first access. The insert tolerates a concurrent creator.
	GetOrCreate(db *gorm.DB, userID, monthYear string) (*models.UsageRecord, error)

	// IncrementOcrScans bumps the counter by one only while the stored
	// value is below maxScans (pass models.Unlimited to skip the guard).
	// Returns false without mutation when the ceiling is hit.
	IncrementOcrScans(db *gorm.DB, userID, monthYear string, maxScans int64) (bool, error)

	// AddStorageBytes adds size only while the result stays within
	// maxBytes. Same conditional-update contract as IncrementOcrScans.
	AddStorageBytes(db *gorm.DB, userID, monthYear string, size, maxBytes int64) (bool, error)

	SetLastBackupAt(db *gorm.DB, userID, monthYear string, at time.Time) error
}

type usageRepository struct{}

func NewUsageRepository() UsageRepository {
	return &usageRepository{}
}

func (r *usageRepository) GetOrCreate(db *gorm.DB, userID, monthYear string) (*models.UsageRecord, error) {
	var record models.UsageRecord
	err := db.First(&record, "user_id = ? AND month_year = ?", userID, monthYear).Error
	if err == nil {
		return &record, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	err = db.Exec(`
		INSERT INTO usage_tracking (id, user_id, month_year, ocr_scans_used, storage_used_bytes, created_at, updated_at)
		VALUES (uuid_generate_v4(), ?, ?, 0, 0, NOW(), NOW())
		ON CONFLICT (user_id, month_year) DO NOTHING
	`, userID, monthYear).Error
	if err != nil {
		return nil, err
	}

	err = db.First(&record, "user_id = ? AND month_year = ?", userID, monthYear).Error
	return &record, err
}

// The guard lives inside the UPDATE so two devices incrementing at once
// cannot overshoot the limit: the row either matches and moves, or the
// statement affects nothing.
func (r *usageRepository) IncrementOcrScans(db *gorm.DB, userID, monthYear string, maxScans int64) (bool, error) {
	res := db.Exec(`
		UPDATE usage_tracking
		SET ocr_scans_used = ocr_scans_used + 1, updated_at = NOW()
		WHERE user_id = ? AND month_year = ?
		AND (? < 0 OR ocr_scans_used < ?)
	`, userID, monthYear, maxScans, maxScans)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *usageRepository) AddStorageBytes(db *gorm.DB, userID, monthYear string, size, maxBytes int64) (bool, error) {
	res := db.Exec(`
		UPDATE usage_tracking
		SET storage_used_bytes = GREATEST(storage_used_bytes + ?, 0), updated_at = NOW()
		WHERE user_id = ? AND month_year = ?
		AND (? < 0 OR storage_used_bytes + ? <= ?)
	`, size, userID, monthYear, maxBytes, size, maxBytes)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *usageRepository) SetLastBackupAt(db *gorm.DB, userID, monthYear string, at time.Time) error {
	return db.Model(&models.UsageRecord{}).
		Where("user_id = ? AND month_year = ?", userID, monthYear).
		Update("last_backup_at", at).Error
}
