package services

import (
	"testing"
	"time"

	"policytracker/internal/models"
	"policytracker/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeSubscriptionRepo struct {
	subs map[string]*models.Subscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: make(map[string]*models.Subscription)}
}

func (f *fakeSubscriptionRepo) FindByUser(db *gorm.DB, userID string) (*models.Subscription, error) {
	sub, ok := f.subs[userID]
	if !ok {
		return nil, repositories.ErrSubscriptionNotFound
	}
	return sub, nil
}

func (f *fakeSubscriptionRepo) Upsert(db *gorm.DB, sub *models.Subscription) error {
	f.subs[sub.UserID] = sub
	return nil
}

func (f *fakeSubscriptionRepo) MarkExpired(db *gorm.DB) (int64, error) {
	var n int64
	now := time.Now()
	for _, sub := range f.subs {
		if sub.Status == models.SubscriptionStatusActive && sub.EndDate.Before(now) {
			sub.Status = models.SubscriptionStatusExpired
			n++
		}
	}
	return n, nil
}

func TestCheckSubscriptionMissingRowMeansFreeTier(t *testing.T) {
	t.Parallel()

	svc := NewSubscriptionService(newFakeSubscriptionRepo())

	status, err := svc.CheckSubscription(nil, "u1")
	require.NoError(t, err, "a user without a subscription row is not an error")
	assert.False(t, status.Subscribed)
	assert.Empty(t, status.PlanName)
}

func TestActivatePlanMonthly(t *testing.T) {
	t.Parallel()

	repo := newFakeSubscriptionRepo()
	svc := NewSubscriptionService(repo)

	require.NoError(t, svc.ActivatePlan(nil, "u1", "pro", models.BillingMonthly))

	sub := repo.subs["u1"]
	require.NotNil(t, sub)
	assert.Equal(t, "pro (monthly)", sub.PlanName)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)

	wantEnd := time.Now().AddDate(0, 1, 0)
	assert.WithinDuration(t, wantEnd, sub.EndDate, time.Minute)

	status, err := svc.CheckSubscription(nil, "u1")
	require.NoError(t, err)
	assert.True(t, status.Subscribed)
}

func TestActivatePlanYearly(t *testing.T) {
	t.Parallel()

	repo := newFakeSubscriptionRepo()
	svc := NewSubscriptionService(repo)

	require.NoError(t, svc.ActivatePlan(nil, "u1", "pro", models.BillingYearly))

	sub := repo.subs["u1"]
	require.NotNil(t, sub)
	assert.Equal(t, "pro (yearly)", sub.PlanName)
	assert.WithinDuration(t, time.Now().AddDate(1, 0, 0), sub.EndDate, time.Minute)
}

func TestIsSubscribedLapsedRow(t *testing.T) {
	t.Parallel()

	repo := newFakeSubscriptionRepo()
	repo.subs["u1"] = &models.Subscription{
		UserID:  "u1",
		Status:  models.SubscriptionStatusActive,
		EndDate: time.Now().Add(-time.Hour),
	}
	svc := NewSubscriptionService(repo)

	assert.False(t, svc.IsSubscribed(nil, "u1"), "an active row past its end date grants nothing")
}

func TestProcessExpired(t *testing.T) {
	t.Parallel()

	repo := newFakeSubscriptionRepo()
	repo.subs["u1"] = &models.Subscription{
		UserID:  "u1",
		Status:  models.SubscriptionStatusActive,
		EndDate: time.Now().Add(-time.Hour),
	}
	repo.subs["u2"] = &models.Subscription{
		UserID:  "u2",
		Status:  models.SubscriptionStatusActive,
		EndDate: time.Now().Add(time.Hour),
	}
	svc := NewSubscriptionService(repo)

	flipped, err := svc.ProcessExpired(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), flipped)
	assert.Equal(t, models.SubscriptionStatusExpired, repo.subs["u1"].Status)
	assert.Equal(t, models.SubscriptionStatusActive, repo.subs["u2"].Status)
}
