package models

import "time"

// UsageRecord holds the per-user consumption counters for one calendar
// month. One row per (user, month_year); created lazily on first read.
// OCR scans only ever grow within a month; storage can shrink when a
// document is deleted.
type UsageRecord struct {
	BaseModel
	UserID           string     `gorm:"type:uuid;not null;uniqueIndex:idx_usage_user_month" json:"user_id"`
	MonthYear        string     `gorm:"type:varchar(7);not null;uniqueIndex:idx_usage_user_month" json:"month_year"` // "2006-01"
	OcrScansUsed     int        `gorm:"not null;default:0" json:"ocr_scans_used"`
	StorageUsedBytes int64      `gorm:"not null;default:0" json:"storage_used_bytes"`
	LastBackupAt     *time.Time `json:"last_backup_at,omitempty"`
}

func (UsageRecord) TableName() string {
	return "usage_tracking"
}

// CurrentMonthYear formats t as the usage bucket key.
func CurrentMonthYear(t time.Time) string {
	return t.Format("2006-01")
}
