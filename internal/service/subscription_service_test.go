package service

import (
	"testing"
	"time"

	"go-commerce-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSubscriptionValidatesDates(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "0")
	svc := NewSubscriptionService(repository.NewSubscriptionRepo(db), repository.NewUserRepo(db))

	_, err := svc.Create(&CreateSubscriptionRequest{
		UserID:    user.ID,
		PlanCode:  "GOLD",
		Price:     decimal.RequireFromString("49000"),
		StartDate: "2026-09-01",
		EndDate:   "2026-08-01",
	}, "tester")
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = svc.Create(&CreateSubscriptionRequest{
		UserID:    user.ID,
		PlanCode:  "GOLD",
		Price:     decimal.RequireFromString("49000"),
		StartDate: "01-09-2026",
		EndDate:   "2026-10-01",
	}, "tester")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestSubscriptionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "0")
	svc := NewSubscriptionService(repository.NewSubscriptionRepo(db), repository.NewUserRepo(db))

	sub, err := svc.Create(&CreateSubscriptionRequest{
		UserID:    user.ID,
		PlanCode:  "GOLD",
		Price:     decimal.RequireFromString("49000"),
		StartDate: time.Now().Format("2006-01-02"),
		EndDate:   time.Now().AddDate(0, 1, 0).Format("2006-01-02"),
		AutoRenew: true,
	}, "tester")
	require.NoError(t, err)
	assert.True(t, sub.IsActive)

	cancelled, err := svc.Cancel(sub.ID, "tester")
	require.NoError(t, err)
	assert.False(t, cancelled.IsActive)
	assert.False(t, cancelled.AutoRenew)

	_, err = svc.Cancel(sub.ID, "tester")
	assert.ErrorIs(t, err, ErrAlreadyProcessed)
}

func TestGetExpiringSubscriptions(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "0")
	svc := NewSubscriptionService(repository.NewSubscriptionRepo(db), repository.NewUserRepo(db))

	expiring, err := svc.Create(&CreateSubscriptionRequest{
		UserID:    user.ID,
		PlanCode:  "GOLD",
		Price:     decimal.RequireFromString("49000"),
		StartDate: time.Now().AddDate(0, -1, 0).Format("2006-01-02"),
		EndDate:   time.Now().AddDate(0, 0, 3).Format("2006-01-02"),
	}, "tester")
	require.NoError(t, err)

	_, err = svc.Create(&CreateSubscriptionRequest{
		UserID:    user.ID,
		PlanCode:  "SILVER",
		Price:     decimal.RequireFromString("29000"),
		StartDate: time.Now().Format("2006-01-02"),
		EndDate:   time.Now().AddDate(1, 0, 0).Format("2006-01-02"),
	}, "tester")
	require.NoError(t, err)

	soon, err := svc.GetExpiring(7 * 24 * time.Hour)
	require.NoError(t, err)
	require.Len(t, soon, 1)
	assert.Equal(t, expiring.ID, soon[0].ID)
}
