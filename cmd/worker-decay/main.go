package main

import (
	"context"

	"github.com/Behyna/subscription-engine/internal/config"
	"github.com/Behyna/subscription-engine/internal/metrics"
	"github.com/Behyna/subscription-engine/internal/repository"
	"github.com/Behyna/subscription-engine/internal/scheduler"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/Behyna/subscription-engine/pkg/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			NewConnectionDB,
			NewMetrics,

			repository.NewTransactionRepository,
			repository.NewTransactionManager,
			service.NewTransactionService,
			NewDecayService,
			NewDecayScheduler,
		),
		fx.Invoke(runDecayScheduler),
	).Run()
}

func runDecayScheduler(cfg *config.Config, decayScheduler *scheduler.DecayScheduler, logger *zap.Logger, lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := decayScheduler.Start(); err != nil {
				return err
			}

			if cfg.Decay.RunOnStart {
				logger.Info("Running entitlement decay on start")
				go decayScheduler.Trigger()
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping entitlement decay scheduler")
			return decayScheduler.Stop(ctx)
		},
	})
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	return mysql.NewConnection(ctx, cfg.Database, logger)
}

func NewMetrics() *metrics.Metrics {
	return metrics.NewMetrics(prometheus.DefaultRegisterer)
}

func NewDecayService(cfg *config.Config, transactions service.TransactionService, m *metrics.Metrics,
	logger *zap.Logger) service.DecayService {
	return service.NewDecayService(transactions, cfg.Location(), m, logger)
}

func NewDecayScheduler(cfg *config.Config, decay service.DecayService, logger *zap.Logger) *scheduler.DecayScheduler {
	return scheduler.NewDecayScheduler(decay, cfg.Decay.Schedule, cfg.Location(), logger)
}
