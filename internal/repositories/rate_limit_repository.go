package repositories

import (
	"time"

	"gorm.io/gorm"
)

type RateLimitRepository interface {
	// IncrementWindow bumps the (user, function, hour) counter in one
	// upsert and returns the count after the increment. The caller
	// compares against its cap; the row is created on first hit.
	IncrementWindow(db *gorm.DB, userID, functionName string, windowStart time.Time) (int, error)

	// PruneBefore drops windows older than the cutoff.
	PruneBefore(db *gorm.DB, cutoff time.Time) (int64, error)
}

type rateLimitRepository struct{}

func NewRateLimitRepository() RateLimitRepository {
	return &rateLimitRepository{}
}

func (r *rateLimitRepository) IncrementWindow(db *gorm.DB, userID, functionName string, windowStart time.Time) (int, error) {
	var count int
	err := db.Raw(`
		INSERT INTO rate_limits (id, user_id, function_name, window_start, request_count, created_at, updated_at)
		VALUES (uuid_generate_v4(), ?, ?, ?, 1, NOW(), NOW())
		ON CONFLICT (user_id, function_name, window_start)
		DO UPDATE SET request_count = rate_limits.request_count + 1, updated_at = NOW()
		RETURNING request_count
	`, userID, functionName, windowStart).Scan(&count).Error
	return count, err
}

func (r *rateLimitRepository) PruneBefore(db *gorm.DB, cutoff time.Time) (int64, error) {
	res := db.Exec(`DELETE FROM rate_limits WHERE window_start < ?`, cutoff)
	return res.RowsAffected, res.Error
}
