package services

import (
	"context"
	"testing"
	"time"

	"policytracker/internal/models"
	"policytracker/internal/repositories"
	"policytracker/internal/services/dto"
	"policytracker/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeClientRepo struct {
	clients map[string]*models.Client
}

func newFakeClientRepo() *fakeClientRepo {
	return &fakeClientRepo{clients: make(map[string]*models.Client)}
}

func (f *fakeClientRepo) Create(db *gorm.DB, client *models.Client) error {
	f.clients[client.ID] = client
	return nil
}

func (f *fakeClientRepo) FindByID(db *gorm.DB, userID, id string) (*models.Client, error) {
	client, ok := f.clients[id]
	if !ok || client.UserID != userID {
		return nil, repositories.ErrClientNotFound
	}
	return client, nil
}

func (f *fakeClientRepo) FindByUser(db *gorm.DB, userID string) ([]models.Client, error) {
	return nil, nil
}

func (f *fakeClientRepo) FindFollowUpsDue(db *gorm.DB, userID string, until time.Time) ([]models.Client, error) {
	return nil, nil
}

func (f *fakeClientRepo) Update(db *gorm.DB, client *models.Client) error { return nil }
func (f *fakeClientRepo) Delete(db *gorm.DB, userID, id string) error     { return nil }

type fakeNotificationRepo struct {
	created []*models.Notification
}

func (f *fakeNotificationRepo) Create(db *gorm.DB, notification *models.Notification) error {
	f.created = append(f.created, notification)
	return nil
}

func (f *fakeNotificationRepo) FindByUser(db *gorm.DB, userID string, unreadOnly bool) ([]models.Notification, error) {
	return nil, nil
}

func (f *fakeNotificationRepo) MarkRead(db *gorm.DB, userID, id string) error { return nil }
func (f *fakeNotificationRepo) MarkAllRead(db *gorm.DB, userID string) (int64, error) {
	return 0, nil
}

type policyFixture struct {
	svc           PolicyService
	policyRepo    *fakePolicyRepo
	clientRepo    *fakeClientRepo
	notifications *fakeNotificationRepo
}

func newPolicyFixture(policyCount int64, subscribed bool) *policyFixture {
	policyRepo := &fakePolicyRepo{count: policyCount}
	clientRepo := newFakeClientRepo()
	clientRepo.clients["c1"] = &models.Client{
		BaseModel: models.BaseModel{ID: "c1"},
		UserID:    "u1",
		FullName:  "Ravi",
	}
	notificationRepo := &fakeNotificationRepo{}
	usageSvc := newUsageServiceForTest(newFakeUsageRepo(), policyRepo, subscribed)

	return &policyFixture{
		svc:           NewPolicyService(policyRepo, clientRepo, notificationRepo, usageSvc, nil),
		policyRepo:    policyRepo,
		clientRepo:    clientRepo,
		notifications: notificationRepo,
	}
}

func validPolicyRequest() *dto.CreatePolicyRequest {
	return &dto.CreatePolicyRequest{
		ClientID:          "c1",
		PolicyNumber:      "LIC-001",
		Insurer:           "LIC",
		PolicyType:        "life",
		PremiumAmount:     12000,
		SumAssured:        1000000,
		CommissionPercent: 25,
		StartDate:         time.Now(),
		EndDate:           time.Now().AddDate(1, 0, 0),
	}
}

func TestCreatePolicy(t *testing.T) {
	t.Parallel()

	f := newPolicyFixture(0, false)

	policy, err := f.svc.CreatePolicy(context.Background(), nil, "u1", validPolicyRequest())
	require.NoError(t, err)

	assert.Equal(t, models.PolicyStatusActive, policy.Status)
	assert.Equal(t, float64(3000), policy.CommissionAmount, "commission is derived server-side")
	require.Len(t, f.policyRepo.created, 1)

	require.Len(t, f.notifications.created, 1)
	assert.Equal(t, models.NotificationPolicyCreated, f.notifications.created[0].Type)
	assert.Equal(t, "u1", f.notifications.created[0].UserID)
}

func TestCreatePolicyQuotaGate(t *testing.T) {
	t.Parallel()

	f := newPolicyFixture(25, false)

	_, err := f.svc.CreatePolicy(context.Background(), nil, "u1", validPolicyRequest())
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 403, appErr.HTTPCode)
	assert.Empty(t, f.policyRepo.created, "a gated create never reaches the store")
	assert.Empty(t, f.notifications.created)
}

func TestCreatePolicyProBypassesQuota(t *testing.T) {
	t.Parallel()

	f := newPolicyFixture(500, true)

	_, err := f.svc.CreatePolicy(context.Background(), nil, "u1", validPolicyRequest())
	assert.NoError(t, err)
}

func TestCreatePolicyRejectsInvertedDates(t *testing.T) {
	t.Parallel()

	f := newPolicyFixture(0, false)

	req := validPolicyRequest()
	req.EndDate = req.StartDate.AddDate(0, 0, -1)

	_, err := f.svc.CreatePolicy(context.Background(), nil, "u1", req)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 400, appErr.HTTPCode)
}

func TestCreatePolicyForeignClient(t *testing.T) {
	t.Parallel()

	f := newPolicyFixture(0, false)

	req := validPolicyRequest()
	req.ClientID = "someone-elses-client"

	_, err := f.svc.CreatePolicy(context.Background(), nil, "u1", req)
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, 404, appErr.HTTPCode)
}
