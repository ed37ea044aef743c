package scheduler

import (
	"context"
	"time"

	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultRunTimeout = 30 * time.Minute

// DecayScheduler runs the entitlement decay job on a cron schedule.
type DecayScheduler struct {
	cron       *cron.Cron
	decay      service.DecayService
	schedule   string
	runTimeout time.Duration
	logger     *zap.Logger
}

func NewDecayScheduler(decay service.DecayService, schedule string, location *time.Location, logger *zap.Logger) *DecayScheduler {
	if location == nil {
		location = time.UTC
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger))
	c := cron.New(cron.WithLocation(location), cron.WithChain(cron.Recover(cronLogger)))

	return &DecayScheduler{
		cron:       c,
		decay:      decay,
		schedule:   schedule,
		runTimeout: defaultRunTimeout,
		logger:     logger,
	}
}

// Start registers the decay job and starts the cron scheduler.
func (s *DecayScheduler) Start() error {
	if _, err := s.cron.AddFunc(s.schedule, s.Trigger); err != nil {
		s.logger.Error("Failed to schedule entitlement decay job", zap.Error(err), zap.String("schedule", s.schedule))
		return err
	}

	s.cron.Start()
	s.logger.Info("Scheduled entitlement decay job", zap.String("schedule", s.schedule))
	return nil
}

// Trigger runs the decay job once for the current day.
func (s *DecayScheduler) Trigger() {
	ctx, cancel := context.WithTimeout(context.Background(), s.runTimeout)
	defer cancel()

	result, err := s.decay.Run(ctx, time.Now())
	if err != nil {
		s.logger.Error("Entitlement decay run failed", zap.Error(err), zap.String("day", result.Day))
		return
	}

	if result.Failed > 0 {
		s.logger.Warn("Entitlement decay run partially failed",
			zap.String("day", result.Day),
			zap.Int("failed", result.Failed),
			zap.Int("decremented", result.Decremented))
	}
}

// Stop stops the scheduler and waits for a running job to finish or ctx to expire.
func (s *DecayScheduler) Stop(ctx context.Context) error {
	select {
	case <-s.cron.Stop().Done():
		s.logger.Info("Entitlement decay scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
