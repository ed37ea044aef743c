package service

import (
	"context"
	"errors"
	"time"

	"github.com/Behyna/subscription-engine/internal/metrics"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/repository"
	"go.uber.org/zap"
)

type SubscriptionService interface {
	CheckSubscriptionStatus(ctx context.Context, userID string, service model.Service) (SubscriptionStatus, error)
}

type subscription struct {
	repo     repository.TransactionRepository
	location *time.Location
	now      func() time.Time
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

func NewSubscriptionService(repo repository.TransactionRepository, location *time.Location,
	metrics *metrics.Metrics, logger *zap.Logger) SubscriptionService {
	if location == nil {
		location = time.UTC
	}
	return &subscription{repo: repo, location: location, now: time.Now, metrics: metrics, logger: logger}
}

// CheckSubscriptionStatus reports whether userID holds a COMPLETED transaction for service with
// entitlement days left. The most recent such transaction determines the reported expiry.
func (s *subscription) CheckSubscriptionStatus(ctx context.Context, userID string, service model.Service) (SubscriptionStatus, error) {
	if !service.Valid() {
		return SubscriptionStatus{}, validationError(ErrInvalidService)
	}

	transaction, err := s.repo.FindLatestActive(ctx, userID, service)
	if errors.Is(err, repository.ErrTransactionNotFound) {
		s.metrics.RecordSubscriptionCheck(false)
		return SubscriptionStatus{}, nil
	}
	if err != nil {
		s.logger.Error("Failed to check subscription",
			zap.Error(err),
			zap.String("userID", userID),
			zap.String("service", string(service)))
		return SubscriptionStatus{}, err
	}

	s.metrics.RecordSubscriptionCheck(true)
	expiresAt := StartOfDay(s.now(), s.location).AddDate(0, 0, transaction.RemainingTime)

	return SubscriptionStatus{
		IsActive:      true,
		RemainingDays: transaction.RemainingTime,
		ExpiresAt:     &expiresAt,
	}, nil
}

func StartOfDay(t time.Time, location *time.Location) time.Time {
	local := t.In(location)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, location)
}
