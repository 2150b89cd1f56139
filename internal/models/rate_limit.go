package models

import "time"

// RateLimitWindow is one fixed hourly counting window. WindowStart is
// truncated to the hour, so concurrent attempts within the same hour
// land on the same row.
type RateLimitWindow struct {
	BaseModel
	UserID       string    `gorm:"type:uuid;not null;uniqueIndex:idx_rate_user_fn_window" json:"user_id"`
	FunctionName string    `gorm:"not null;uniqueIndex:idx_rate_user_fn_window" json:"function_name"`
	WindowStart  time.Time `gorm:"not null;uniqueIndex:idx_rate_user_fn_window" json:"window_start"`
	RequestCount int       `gorm:"not null;default:0" json:"request_count"`
}

func (RateLimitWindow) TableName() string {
	return "rate_limits"
}

// TruncateToHour computes the window key for instant t.
func TruncateToHour(t time.Time) time.Time {
	return t.UTC().Truncate(time.Hour)
}
