package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"policytracker/internal/compress"
	"policytracker/internal/logger"
	"policytracker/internal/models"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"
	"policytracker/internal/storage"
	"policytracker/pkg/apperrors"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UploadService interface {
	// UploadDocument runs the compress pipeline, charges the stored size
	// against the user's storage quota and writes the file. The quota is
	// charged before the write so a losing racer never stores bytes it
	// was not granted.
	UploadDocument(ctx context.Context, db *gorm.DB, userID string, req *UploadRequest) (*dto.UploadResponse, error)

	GetDocument(ctx context.Context, db *gorm.DB, userID, id string) (*models.Upload, []byte, error)
	ListByPolicy(db *gorm.DB, userID, policyID string) ([]models.Upload, error)
	DeleteDocument(ctx context.Context, db *gorm.DB, userID, id string) error
}

// UploadRequest carries the raw file plus its declared metadata.
type UploadRequest struct {
	FileName string
	MimeType string
	PolicyID string
	Data     []byte
}

type uploadService struct {
	uploadRepo   repositories.UploadRepository
	usageSvc     UsageService
	store        storage.Storage
	maxSize      int64
	allowedTypes map[string]bool
}

func NewUploadService(
	uploadRepo repositories.UploadRepository,
	usageSvc UsageService,
	store storage.Storage,
	maxSize int64,
	allowedTypes []string,
) UploadService {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &uploadService{
		uploadRepo:   uploadRepo,
		usageSvc:     usageSvc,
		store:        store,
		maxSize:      maxSize,
		allowedTypes: allowed,
	}
}

func (s *uploadService) UploadDocument(ctx context.Context, db *gorm.DB, userID string, req *UploadRequest) (*dto.UploadResponse, error) {
	if len(req.Data) == 0 {
		return nil, apperrors.NewBadRequestError("Empty file")
	}
	if int64(len(req.Data)) > s.maxSize {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("File exceeds the %d byte limit", s.maxSize))
	}
	if !s.allowedTypes[req.MimeType] {
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("Unsupported file type: %s", req.MimeType))
	}

	result := compress.CompressDocument(req.Data, req.MimeType)
	storedSize := int64(len(result.Data))

	if !s.usageSvc.AddStorageUsage(ctx, db, userID, storedSize) {
		return nil, apperrors.ErrLimitExceeded("storage",
			"Storage limit reached for your plan, upgrade for more space")
	}

	path := filepath.Join(userID, uuid.NewString()+filepath.Ext(req.FileName))
	if err := s.store.Save(ctx, path, bytes.NewReader(result.Data), result.MimeType); err != nil {
		// Refund what was just charged; the file never landed.
		logger.CtxWithError(ctx, "document write failed", err, "user_id", userID, "path", path)
		s.usageSvc.ReleaseStorageUsage(ctx, db, userID, storedSize)
		return nil, apperrors.ErrDependencyFailure(err, "storage")
	}

	upload := &models.Upload{
		UserID:       userID,
		PolicyID:     req.PolicyID,
		FileName:     req.FileName,
		Path:         path,
		MimeType:     result.MimeType,
		OriginalSize: int64(len(req.Data)),
		StoredSize:   storedSize,
		Compressed:   result.Compressed,
	}
	if err := s.uploadRepo.Create(db, upload); err != nil {
		logger.CtxWithError(ctx, "upload persist failed", err, "path", path)
		_ = s.store.Delete(ctx, path)
		s.usageSvc.ReleaseStorageUsage(ctx, db, userID, storedSize)
		return nil, apperrors.InternalError(err)
	}

	url, _ := s.store.GetURL(ctx, path)

	logger.CtxInfo(ctx, "document stored",
		"upload_id", upload.ID,
		"original_size", upload.OriginalSize,
		"stored_size", upload.StoredSize,
		"compressed", upload.Compressed)

	return &dto.UploadResponse{
		ID:           upload.ID,
		FileName:     upload.FileName,
		MimeType:     upload.MimeType,
		OriginalSize: upload.OriginalSize,
		StoredSize:   upload.StoredSize,
		Compressed:   upload.Compressed,
		URL:          url,
	}, nil
}

func (s *uploadService) GetDocument(ctx context.Context, db *gorm.DB, userID, id string) (*models.Upload, []byte, error) {
	upload, err := s.uploadRepo.FindByID(db, userID, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUploadNotFound) {
			return nil, nil, apperrors.ErrNotFound(err)
		}
		return nil, nil, apperrors.InternalError(err)
	}

	reader, err := s.store.Get(ctx, upload.Path)
	if err != nil {
		return nil, nil, apperrors.ErrDependencyFailure(err, "storage")
	}
	defer reader.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return nil, nil, apperrors.ErrDependencyFailure(err, "storage")
	}
	return upload, buf.Bytes(), nil
}

func (s *uploadService) ListByPolicy(db *gorm.DB, userID, policyID string) ([]models.Upload, error) {
	return s.uploadRepo.FindByPolicy(db, userID, policyID)
}

func (s *uploadService) DeleteDocument(ctx context.Context, db *gorm.DB, userID, id string) error {
	upload, err := s.uploadRepo.FindByID(db, userID, id)
	if err != nil {
		if apperrors.Is(err, repositories.ErrUploadNotFound) {
			return apperrors.ErrNotFound(err)
		}
		return apperrors.InternalError(err)
	}

	if err := s.uploadRepo.Delete(db, userID, id); err != nil {
		return apperrors.InternalError(err)
	}

	if err := s.store.Delete(ctx, upload.Path); err != nil {
		logger.CtxWithError(ctx, "stored file removal failed", err, "path", upload.Path)
	}

	// Freed bytes go back to the month's quota.
	s.usageSvc.ReleaseStorageUsage(ctx, db, userID, upload.StoredSize)
	return nil
}
