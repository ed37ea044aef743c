package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/mocks"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/repository"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSubscription_CheckSubscriptionStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("Active subscription reports remaining days and expiry", func(t *testing.T) {
		repo := &mocks.TransactionRepository{}
		loc := kigali(t)
		svc := service.NewSubscriptionService(repo, loc, newMetrics(), zap.NewNop())

		active := pendingTransaction("R1", 1)
		active.Status = model.TransactionStatusCompleted
		active.RemainingTime = 12
		repo.On("FindLatestActive", ctx, "U1", model.ServiceBooks).Return(active, nil)

		status, err := svc.CheckSubscriptionStatus(ctx, "U1", model.ServiceBooks)

		require.NoError(t, err)
		assert.True(t, status.IsActive)
		assert.Equal(t, 12, status.RemainingDays)
		require.NotNil(t, status.ExpiresAt)
		expected := service.StartOfDay(time.Now(), loc).AddDate(0, 0, 12)
		assert.WithinDuration(t, expected, *status.ExpiresAt, 24*time.Hour)
		assert.Equal(t, 0, status.ExpiresAt.Hour())
	})

	t.Run("No active transaction is inactive", func(t *testing.T) {
		repo := &mocks.TransactionRepository{}
		svc := service.NewSubscriptionService(repo, time.UTC, newMetrics(), zap.NewNop())
		repo.On("FindLatestActive", ctx, "U1", model.ServiceBooks).Return(nil, repository.ErrTransactionNotFound)

		status, err := svc.CheckSubscriptionStatus(ctx, "U1", model.ServiceBooks)

		require.NoError(t, err)
		assert.Equal(t, service.SubscriptionStatus{}, status)
		assert.Nil(t, status.ExpiresAt)
	})

	t.Run("Store failure is returned", func(t *testing.T) {
		repo := &mocks.TransactionRepository{}
		svc := service.NewSubscriptionService(repo, time.UTC, newMetrics(), zap.NewNop())
		repo.On("FindLatestActive", ctx, "U1", model.ServiceBooks).Return(nil, errors.New("db down"))

		_, err := svc.CheckSubscriptionStatus(ctx, "U1", model.ServiceBooks)

		assert.EqualError(t, err, "db down")
	})

	t.Run("Unknown service", func(t *testing.T) {
		svc := service.NewSubscriptionService(&mocks.TransactionRepository{}, time.UTC, newMetrics(), zap.NewNop())

		_, err := svc.CheckSubscriptionStatus(ctx, "U1", "MUSIC")

		assertServiceError(t, err, constants.ErrCodeValidationFailed)
	})
}

func TestStartOfDay(t *testing.T) {
	loc := kigali(t)
	at := time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC)

	got := service.StartOfDay(at, loc)

	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, loc), got)
}
