package models

// Upload records one stored document. StoredSize is what counts against
// the storage quota; OriginalSize is kept for compression accounting.
type Upload struct {
	BaseModel
	UserID       string `gorm:"type:uuid;not null;index" json:"user_id"`
	PolicyID     string `gorm:"type:uuid;index" json:"policy_id,omitempty"`
	FileName     string `gorm:"not null" json:"file_name"`
	Path         string `gorm:"not null" json:"-"`
	MimeType     string `gorm:"not null" json:"mime_type"`
	OriginalSize int64  `gorm:"not null" json:"original_size"`
	StoredSize   int64  `gorm:"not null" json:"stored_size"`
	Compressed   bool   `gorm:"default:false" json:"compressed"`
}
