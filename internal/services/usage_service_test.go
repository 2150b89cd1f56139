package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"policytracker/internal/models"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeUsageRepo mirrors the conditional-update semantics of the real
// repository against an in-memory row set.
type fakeUsageRepo struct {
	records map[string]*models.UsageRecord
	failAll bool
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{records: make(map[string]*models.UsageRecord)}
}

func (f *fakeUsageRepo) key(userID, monthYear string) string {
	return userID + "/" + monthYear
}

func (f *fakeUsageRepo) GetOrCreate(db *gorm.DB, userID, monthYear string) (*models.UsageRecord, error) {
	if f.failAll {
		return nil, errors.New("usage store down")
	}
	k := f.key(userID, monthYear)
	if rec, ok := f.records[k]; ok {
		return rec, nil
	}
	rec := &models.UsageRecord{UserID: userID, MonthYear: monthYear}
	f.records[k] = rec
	return rec, nil
}

func (f *fakeUsageRepo) IncrementOcrScans(db *gorm.DB, userID, monthYear string, maxScans int64) (bool, error) {
	if f.failAll {
		return false, errors.New("usage store down")
	}
	rec, ok := f.records[f.key(userID, monthYear)]
	if !ok {
		return false, nil
	}
	if maxScans >= 0 && int64(rec.OcrScansUsed) >= maxScans {
		return false, nil
	}
	rec.OcrScansUsed++
	return true, nil
}

func (f *fakeUsageRepo) AddStorageBytes(db *gorm.DB, userID, monthYear string, size, maxBytes int64) (bool, error) {
	if f.failAll {
		return false, errors.New("usage store down")
	}
	rec, ok := f.records[f.key(userID, monthYear)]
	if !ok {
		return false, nil
	}
	if maxBytes >= 0 && rec.StorageUsedBytes+size > maxBytes {
		return false, nil
	}
	rec.StorageUsedBytes += size
	if rec.StorageUsedBytes < 0 {
		rec.StorageUsedBytes = 0
	}
	return true, nil
}

func (f *fakeUsageRepo) SetLastBackupAt(db *gorm.DB, userID, monthYear string, at time.Time) error {
	rec, err := f.GetOrCreate(db, userID, monthYear)
	if err != nil {
		return err
	}
	rec.LastBackupAt = &at
	return nil
}

// fakePolicyRepo serves the live count for quota checks and records
// creations for the policy service tests.
type fakePolicyRepo struct {
	count    int64
	countErr error
	created  []*models.Policy
}

func (f *fakePolicyRepo) Create(db *gorm.DB, policy *models.Policy) error {
	policy.ID = "policy_" + models.CurrentMonthYear(time.Now())
	f.created = append(f.created, policy)
	f.count++
	return nil
}
func (f *fakePolicyRepo) FindByID(db *gorm.DB, userID, id string) (*models.Policy, error) {
	return nil, repositories.ErrPolicyNotFound
}
func (f *fakePolicyRepo) FindByUser(db *gorm.DB, userID string) ([]models.Policy, error) {
	return nil, nil
}
func (f *fakePolicyRepo) FindByClient(db *gorm.DB, userID, clientID string) ([]models.Policy, error) {
	return nil, nil
}
func (f *fakePolicyRepo) FindRecent(db *gorm.DB, userID string, limit int) ([]models.Policy, error) {
	return nil, nil
}
func (f *fakePolicyRepo) FindRenewalsDue(db *gorm.DB, userID string, within time.Duration) ([]models.Policy, error) {
	return nil, nil
}
func (f *fakePolicyRepo) CountByUser(db *gorm.DB, userID string) (int64, error) {
	return f.count, f.countErr
}
func (f *fakePolicyRepo) GetCommissionStats(db *gorm.DB, userID string, now time.Time) (*repositories.CommissionStats, error) {
	return &repositories.CommissionStats{}, nil
}
func (f *fakePolicyRepo) Update(db *gorm.DB, policy *models.Policy) error { return nil }
func (f *fakePolicyRepo) Delete(db *gorm.DB, userID, id string) error     { return nil }

// fakeSubscriptionService pins the tier for a test.
type fakeSubscriptionService struct {
	subscribed bool
}

func (f *fakeSubscriptionService) CheckSubscription(db *gorm.DB, userID string) (*dto.SubscriptionStatusResponse, error) {
	return &dto.SubscriptionStatusResponse{Subscribed: f.subscribed}, nil
}
func (f *fakeSubscriptionService) IsSubscribed(db *gorm.DB, userID string) bool {
	return f.subscribed
}
func (f *fakeSubscriptionService) ActivatePlan(db *gorm.DB, userID, planType string, cycle models.BillingCycle) error {
	f.subscribed = true
	return nil
}
func (f *fakeSubscriptionService) ProcessExpired(db *gorm.DB) (int64, error) { return 0, nil }

func newUsageServiceForTest(usageRepo *fakeUsageRepo, policyRepo *fakePolicyRepo, subscribed bool) UsageService {
	return NewUsageService(usageRepo, policyRepo, &fakeSubscriptionService{subscribed: subscribed})
}

func TestCanAddPolicyFreeTier(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	svc := newUsageServiceForTest(newFakeUsageRepo(), &fakePolicyRepo{count: 24}, false)
	assert.True(t, svc.CanAddPolicy(ctx, nil, "u1"))

	svc = newUsageServiceForTest(newFakeUsageRepo(), &fakePolicyRepo{count: 25}, false)
	assert.False(t, svc.CanAddPolicy(ctx, nil, "u1"), "free tier stops at 25 policies")
}

func TestCanAddPolicyProUnlimited(t *testing.T) {
	t.Parallel()

	svc := newUsageServiceForTest(newFakeUsageRepo(), &fakePolicyRepo{count: 10_000}, true)
	assert.True(t, svc.CanAddPolicy(context.Background(), nil, "u1"))
}

func TestCanAddPolicyFailsClosedOnError(t *testing.T) {
	t.Parallel()

	svc := newUsageServiceForTest(newFakeUsageRepo(), &fakePolicyRepo{countErr: errors.New("db gone")}, false)
	assert.False(t, svc.CanAddPolicy(context.Background(), nil, "u1"))
}

func TestIncrementOcrUsageStopsAtCeiling(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newFakeUsageRepo()
	svc := newUsageServiceForTest(repo, &fakePolicyRepo{}, false)

	for i := 0; i < 50; i++ {
		require.True(t, svc.IncrementOcrUsage(ctx, nil, "u1"), "scan %d should fit the free quota", i+1)
	}

	assert.False(t, svc.IncrementOcrUsage(ctx, nil, "u1"), "the 51st scan must be rejected")

	rec, err := repo.GetOrCreate(nil, "u1", models.CurrentMonthYear(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, 50, rec.OcrScansUsed, "a rejected increment never mutates the counter")
}

func TestIncrementOcrUsageProIsUnlimited(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := newUsageServiceForTest(newFakeUsageRepo(), &fakePolicyRepo{}, true)

	for i := 0; i < 60; i++ {
		require.True(t, svc.IncrementOcrUsage(ctx, nil, "u1"))
	}
}

func TestIncrementOcrUsageFailsClosed(t *testing.T) {
	t.Parallel()

	repo := newFakeUsageRepo()
	repo.failAll = true
	svc := newUsageServiceForTest(repo, &fakePolicyRepo{}, false)

	assert.False(t, svc.IncrementOcrUsage(context.Background(), nil, "u1"))
}

func TestAddStorageUsageGatedByCeiling(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newFakeUsageRepo()
	svc := newUsageServiceForTest(repo, &fakePolicyRepo{}, false)

	free := models.FreeTierLimits.MaxStorageBytes

	assert.True(t, svc.AddStorageUsage(ctx, nil, "u1", free-1))
	assert.True(t, svc.AddStorageUsage(ctx, nil, "u1", 1), "filling to exactly the ceiling is allowed")
	assert.False(t, svc.AddStorageUsage(ctx, nil, "u1", 1), "one byte over is rejected")

	assert.False(t, svc.AddStorageUsage(ctx, nil, "u1", -5), "negative sizes are rejected")
}

func TestReleaseStorageUsageFreesQuota(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newFakeUsageRepo()
	svc := newUsageServiceForTest(repo, &fakePolicyRepo{}, false)

	free := models.FreeTierLimits.MaxStorageBytes
	require.True(t, svc.AddStorageUsage(ctx, nil, "u1", free))
	require.False(t, svc.AddStorageUsage(ctx, nil, "u1", 1))

	svc.ReleaseStorageUsage(ctx, nil, "u1", 1024)
	assert.True(t, svc.AddStorageUsage(ctx, nil, "u1", 1024), "released bytes become available again")
}

func TestFetchUsageSummary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := newFakeUsageRepo()
	svc := newUsageServiceForTest(repo, &fakePolicyRepo{count: 5}, false)

	monthYear := models.CurrentMonthYear(time.Now())
	rec, err := repo.GetOrCreate(nil, "u1", monthYear)
	require.NoError(t, err)
	rec.OcrScansUsed = 25

	summary, err := svc.FetchUsage(ctx, nil, "u1")
	require.NoError(t, err)

	assert.Equal(t, monthYear, summary.MonthYear)
	assert.False(t, summary.Subscribed)
	assert.Equal(t, int64(5), summary.PolicyCount)
	assert.Equal(t, 25, summary.OcrScansUsed)
	assert.Equal(t, 20, summary.PolicyPercentage)
	assert.Equal(t, 50, summary.OcrPercentage)
	assert.True(t, summary.CanAddPolicy)
	assert.True(t, summary.CanUseOcr)
}
