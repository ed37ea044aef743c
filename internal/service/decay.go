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

type DecayService interface {
	// Run decrements every active entitlement once for the calendar day containing at.
	Run(ctx context.Context, at time.Time) (DecayResult, error)
}

type decay struct {
	transactions TransactionService
	location     *time.Location
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewDecayService(transactions TransactionService, location *time.Location, metrics *metrics.Metrics,
	logger *zap.Logger) DecayService {
	if location == nil {
		location = time.UTC
	}
	return &decay{transactions: transactions, location: location, metrics: metrics, logger: logger}
}

func (d *decay) Run(ctx context.Context, at time.Time) (DecayResult, error) {
	result := DecayResult{Day: at.In(d.location).Format(model.DayLayout)}

	active, err := d.transactions.ListActive(ctx, result.Day)
	if err != nil {
		d.logger.Error("Failed to list active transactions", zap.Error(err), zap.String("day", result.Day))
		return result, err
	}

	result.Candidates = len(active)
	d.logger.Info("Entitlement decay started",
		zap.String("day", result.Day),
		zap.Int("candidates", result.Candidates))

	for _, transaction := range active {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("Entitlement decay interrupted", zap.Error(err), zap.Any("result", result))
			return result, err
		}

		err := d.transactions.DecrementRemainingTime(ctx, transaction.Reference, result.Day)
		switch {
		case err == nil:
			result.Decremented++
			d.metrics.RecordDecayItem("decremented")
		case errors.Is(err, repository.ErrNoRowsAffected):
			result.Skipped++
			d.metrics.RecordDecayItem("skipped")
		default:
			result.Failed++
			d.metrics.RecordDecayItem("failed")
			d.logger.Error("Failed to decrement remaining time",
				zap.Error(err),
				zap.String("reference", transaction.Reference),
				zap.String("day", result.Day))
		}
	}

	d.logger.Info("Entitlement decay finished",
		zap.String("day", result.Day),
		zap.Int("candidates", result.Candidates),
		zap.Int("decremented", result.Decremented),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed))

	return result, nil
}
