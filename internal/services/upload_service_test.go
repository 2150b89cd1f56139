package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"policytracker/internal/models"
	"policytracker/internal/repositories"
	"policytracker/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeStorage struct {
	files   map[string][]byte
	saveErr error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{files: make(map[string][]byte)}
}

func (f *fakeStorage) Save(ctx context.Context, path string, reader io.Reader, contentType string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	f.files[path] = data
	return nil
}

func (f *fakeStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Delete(ctx context.Context, path string) error {
	delete(f.files, path)
	return nil
}

func (f *fakeStorage) Exists(ctx context.Context, path string) (bool, error) {
	_, ok := f.files[path]
	return ok, nil
}

func (f *fakeStorage) GetURL(ctx context.Context, path string) (string, error) {
	return "/files/" + path, nil
}

func (f *fakeStorage) GetSize(ctx context.Context, path string) (int64, error) {
	return int64(len(f.files[path])), nil
}

type fakeUploadRepo struct {
	uploads map[string]*models.Upload
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: make(map[string]*models.Upload)}
}

func (f *fakeUploadRepo) Create(db *gorm.DB, upload *models.Upload) error {
	upload.ID = "up_" + upload.FileName
	f.uploads[upload.ID] = upload
	return nil
}

func (f *fakeUploadRepo) FindByID(db *gorm.DB, userID, id string) (*models.Upload, error) {
	upload, ok := f.uploads[id]
	if !ok || upload.UserID != userID {
		return nil, repositories.ErrUploadNotFound
	}
	return upload, nil
}

func (f *fakeUploadRepo) FindByPolicy(db *gorm.DB, userID, policyID string) ([]models.Upload, error) {
	return nil, nil
}

func (f *fakeUploadRepo) Delete(db *gorm.DB, userID, id string) error {
	if _, ok := f.uploads[id]; !ok {
		return repositories.ErrUploadNotFound
	}
	delete(f.uploads, id)
	return nil
}

type uploadFixture struct {
	svc       UploadService
	store     *fakeStorage
	uploads   *fakeUploadRepo
	usageRepo *fakeUsageRepo
}

func newUploadFixture(maxSize int64) *uploadFixture {
	store := newFakeStorage()
	uploadRepo := newFakeUploadRepo()
	usageRepo := newFakeUsageRepo()
	usageSvc := newUsageServiceForTest(usageRepo, &fakePolicyRepo{}, false)

	return &uploadFixture{
		svc: NewUploadService(uploadRepo, usageSvc, store, maxSize,
			[]string{"image/jpeg", "image/png", "application/pdf"}),
		store:     store,
		uploads:   uploadRepo,
		usageRepo: usageRepo,
	}
}

func (f *uploadFixture) storageUsed(t *testing.T) int64 {
	t.Helper()
	rec, err := f.usageRepo.GetOrCreate(nil, "u1", models.CurrentMonthYear(time.Now()))
	require.NoError(t, err)
	return rec.StorageUsedBytes
}

func TestUploadDocumentPDF(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(10 * 1024 * 1024)
	data := bytes.Repeat([]byte("%PDF-1.4 "), 200)

	resp, err := f.svc.UploadDocument(context.Background(), nil, "u1", &UploadRequest{
		FileName: "policy.pdf",
		MimeType: "application/pdf",
		Data:     data,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(len(data)), resp.OriginalSize)
	assert.Equal(t, int64(len(data)), resp.StoredSize, "small PDFs pass through untouched")
	assert.False(t, resp.Compressed)
	assert.Equal(t, int64(len(data)), f.storageUsed(t), "the stored size is what hits the quota")
	assert.Len(t, f.store.files, 1)
}

func TestUploadDocumentRejectsOversize(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(100)

	_, err := f.svc.UploadDocument(context.Background(), nil, "u1", &UploadRequest{
		FileName: "big.pdf",
		MimeType: "application/pdf",
		Data:     bytes.Repeat([]byte("x"), 200),
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPCode)
	assert.Zero(t, f.storageUsed(t))
}

func TestUploadDocumentRejectsUnsupportedType(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(10 * 1024 * 1024)

	_, err := f.svc.UploadDocument(context.Background(), nil, "u1", &UploadRequest{
		FileName: "virus.exe",
		MimeType: "application/x-msdownload",
		Data:     []byte("MZ"),
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestUploadDocumentQuotaGate(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(200 * 1024 * 1024)

	// Fill the free storage quota first.
	usageSvc := newUsageServiceForTest(f.usageRepo, &fakePolicyRepo{}, false)
	require.True(t, usageSvc.AddStorageUsage(context.Background(), nil, "u1", models.FreeTierLimits.MaxStorageBytes))

	_, err := f.svc.UploadDocument(context.Background(), nil, "u1", &UploadRequest{
		FileName: "one-more.pdf",
		MimeType: "application/pdf",
		Data:     []byte("%PDF-1.4 overflow"),
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.HTTPCode)
	assert.Empty(t, f.store.files, "a gated upload never writes to storage")
}

func TestUploadDocumentRefundsOnStoreFailure(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(10 * 1024 * 1024)
	f.store.saveErr = errors.New("disk full")

	_, err := f.svc.UploadDocument(context.Background(), nil, "u1", &UploadRequest{
		FileName: "doc.pdf",
		MimeType: "application/pdf",
		Data:     []byte("%PDF-1.4 payload"),
	})
	require.Error(t, err)
	assert.Zero(t, f.storageUsed(t), "a failed write must not leak charged quota")
}

func TestDeleteDocumentReleasesQuota(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(10 * 1024 * 1024)
	ctx := context.Background()
	data := []byte("%PDF-1.4 short doc")

	resp, err := f.svc.UploadDocument(ctx, nil, "u1", &UploadRequest{
		FileName: "doc.pdf",
		MimeType: "application/pdf",
		Data:     data,
	})
	require.NoError(t, err)
	require.Equal(t, int64(len(data)), f.storageUsed(t))

	require.NoError(t, f.svc.DeleteDocument(ctx, nil, "u1", resp.ID))

	assert.Zero(t, f.storageUsed(t))
	assert.Empty(t, f.store.files)
}

func TestGetDocumentRoundTrip(t *testing.T) {
	t.Parallel()

	f := newUploadFixture(10 * 1024 * 1024)
	ctx := context.Background()
	data := []byte("%PDF-1.4 round trip")

	resp, err := f.svc.UploadDocument(ctx, nil, "u1", &UploadRequest{
		FileName: "doc.pdf",
		MimeType: "application/pdf",
		Data:     data,
	})
	require.NoError(t, err)

	upload, got, err := f.svc.GetDocument(ctx, nil, "u1", resp.ID)
	require.NoError(t, err)
	assert.Equal(t, data, got)
	assert.Equal(t, "doc.pdf", upload.FileName)

	// Another agent cannot read it.
	_, _, err = f.svc.GetDocument(ctx, nil, "u2", resp.ID)
	require.Error(t, err)
}
