package dto

// UploadResponse reports what was stored after compression.
type UploadResponse struct {
	ID           string `json:"id"`
	FileName     string `json:"file_name"`
	MimeType     string `json:"mime_type"`
	OriginalSize int64  `json:"original_size"`
	StoredSize   int64  `json:"stored_size"`
	Compressed   bool   `json:"compressed"`
	URL          string `json:"url,omitempty"`
}
