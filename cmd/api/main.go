package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Behyna/subscription-engine/internal/api"
	"github.com/Behyna/subscription-engine/internal/api/middleware"
	v1 "github.com/Behyna/subscription-engine/internal/api/v1"
	"github.com/Behyna/subscription-engine/internal/api/validator"
	"github.com/Behyna/subscription-engine/internal/config"
	apierrors "github.com/Behyna/subscription-engine/internal/errors"
	"github.com/Behyna/subscription-engine/internal/metrics"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/notifier"
	"github.com/Behyna/subscription-engine/internal/poller"
	"github.com/Behyna/subscription-engine/internal/repository"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/Behyna/subscription-engine/pkg/httpclient"
	"github.com/Behyna/subscription-engine/pkg/mq"
	"github.com/Behyna/subscription-engine/pkg/mysql"
	"github.com/Behyna/subscription-engine/pkg/paymentgateway"
	"github.com/Behyna/subscription-engine/pkg/redis"
	playground "github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	fx.New(
		fx.Provide(
			config.Load,
			zap.NewProduction,
			NewConnectionDB,
			NewMetrics,
			NewDatabaseMetricsCollector,
			NewPaymentGateway,
			NewNotifier,
			NewXValidator,
			NewPollerManager,
			NewFiberApp,

			repository.NewTransactionRepository,
			repository.NewUserRepository,
			repository.NewTransactionManager,
			service.NewTransactionService,
			NewSubscriptionService,
			NewDecayService,
			service.NewConfirmationService,
			NewPaymentService,

			NewPollerController,
			NewHealthChecker,
			v1.NewHandler,
		),
		fx.Invoke(registerCollectors, startPollers, startServer),
	).Run()
}

func NewConnectionDB(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	ctx := context.Background()
	db, err := mysql.NewConnection(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&model.Transaction{}, &model.User{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return db, nil
}

func NewMetrics() *metrics.Metrics {
	m := metrics.NewMetrics(prometheus.DefaultRegisterer)
	m.SetServiceVersion(version, "", "")
	return m
}

func NewDatabaseMetricsCollector(m *metrics.Metrics, logger *zap.Logger, db *gorm.DB) (*metrics.DatabaseMetricsCollector, error) {
	collector := metrics.NewDatabaseMetricsCollector(m, logger, db)
	if err := collector.Instrument(db); err != nil {
		return nil, err
	}
	return collector, nil
}

func NewPaymentGateway(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) paymentgateway.PaymentGateway {
	client := httpclient.NewHTTPClient(cfg.Gateway.Timeout)
	return paymentgateway.NewPaymentGateway(cfg.Gateway, client,
		paymentgateway.WithStateObserver(func(name string, from, to gobreaker.State) {
			logger.Warn("Gateway circuit changed state",
				zap.String("gateway", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			m.SetBreakerState(name, float64(to))
		}),
	)
}

// NewNotifier connects the configured status notifier backend.
func NewNotifier(cfg *config.Config, logger *zap.Logger, lc fx.Lifecycle) (notifier.Notifier, error) {
	switch cfg.Notifier.Backend {
	case config.NotifierRabbitMQ:
		rabbit, err := mq.NewConnection(cfg.RabbitMQ, logger)
		if err != nil {
			return nil, err
		}
		if err := rabbit.DeclareExchange(cfg.Notifier.Exchange, mq.ExchangeFanout); err != nil {
			_ = rabbit.Close()
			return nil, err
		}
		publisher, err := rabbit.CreatePublisher()
		if err != nil {
			_ = rabbit.Close()
			return nil, err
		}

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return errors.Join(publisher.Close(), rabbit.Close())
			},
		})
		return notifier.NewRabbitNotifier(publisher, cfg.Notifier.Exchange, logger), nil

	case config.NotifierRedis:
		client, err := redis.NewClient(context.Background(), cfg.Redis, logger)
		if err != nil {
			return nil, err
		}

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return client.Close()
			},
		})
		return notifier.NewRedisNotifier(client, cfg.Notifier.Channel, logger), nil

	default:
		logger.Info("Status notifications disabled")
		return notifier.NewNoop(), nil
	}
}

func NewXValidator(m *metrics.Metrics) (validator.IXValidator, error) {
	return validator.NewXValidator(playground.New(), m)
}

func NewPollerManager(cfg *config.Config, confirmation service.ConfirmationService, m *metrics.Metrics,
	logger *zap.Logger) *poller.Manager {
	return poller.NewManager(confirmation, poller.Config{
		Interval:    cfg.Poller.Interval,
		TickTimeout: cfg.Poller.TickTimeout,
		MaxHorizon:  cfg.Poller.MaxHorizon,
	}, m, logger)
}

func NewPollerController(manager *poller.Manager) v1.PollerController {
	return manager
}

func NewHealthChecker(collector *metrics.DatabaseMetricsCollector) v1.HealthChecker {
	return collector
}

func NewSubscriptionService(cfg *config.Config, repo repository.TransactionRepository, m *metrics.Metrics,
	logger *zap.Logger) service.SubscriptionService {
	return service.NewSubscriptionService(repo, cfg.Location(), m, logger)
}

func NewDecayService(cfg *config.Config, transactions service.TransactionService, m *metrics.Metrics,
	logger *zap.Logger) service.DecayService {
	return service.NewDecayService(transactions, cfg.Location(), m, logger)
}

func NewPaymentService(gateway paymentgateway.PaymentGateway, transactions service.TransactionService,
	users repository.UserRepository, manager *poller.Manager, m *metrics.Metrics, logger *zap.Logger) service.PaymentService {
	return service.NewPaymentService(gateway, transactions, users, manager, m, logger)
}

func NewFiberApp(logger *zap.Logger) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      "subscription-engine",
		ErrorHandler: apierrors.ErrorHandler(logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	})
}

func registerCollectors(m *metrics.Metrics, dbCollector *metrics.DatabaseMetricsCollector,
	transactions service.TransactionService, logger *zap.Logger, lc fx.Lifecycle) {
	runtimeCollector := metrics.NewRuntimeCollector(m, logger, func(ctx context.Context) (int, error) {
		pending, err := transactions.ListPending(ctx)
		return len(pending), err
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runtimeCollector.Start(15 * time.Second)
			dbCollector.Start(30 * time.Second)
			return nil
		},
		OnStop: func(ctx context.Context) error {
			runtimeCollector.Stop()
			dbCollector.Stop()
			return nil
		},
	})
}

// startPollers resumes confirmation polling for every transaction left PENDING by a previous run.
func startPollers(manager *poller.Manager, transactions service.TransactionService, logger *zap.Logger,
	lc fx.Lifecycle) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			resumed, err := manager.Resume(ctx, transactions)
			if err != nil {
				logger.Error("Failed to resume pending confirmations", zap.Error(err))
				return nil
			}
			logger.Info("Resumed pending confirmations", zap.Int("count", resumed))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return manager.Shutdown(ctx)
		},
	})
}

func startServer(app *fiber.App, handler *v1.Handler, cfg *config.Config, subscriptions service.SubscriptionService,
	m *metrics.Metrics, logger *zap.Logger, lc fx.Lifecycle) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("auth.jwt_secret is required")
	}

	api.SetupRoutes(app, handler, api.Security{
		Auth:          middleware.JWT(cfg.Auth.JWTSecret, logger),
		Subscriptions: subscriptions,
	}, m, logger)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := app.Listen(cfg.API.Port); err != nil {
					logger.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			logger.Info("HTTP server started", zap.String("port", cfg.API.Port))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return app.ShutdownWithContext(ctx)
		},
	})

	return nil
}
