package metrics

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startedAtKey = "metrics:started_at"

// DatabaseMetricsCollector exports pool statistics and per-query timings for a gorm connection.
type DatabaseMetricsCollector struct {
	metrics       *Metrics
	logger        *zap.Logger
	sqlDB         *sql.DB
	slowThreshold time.Duration
	ticker        *time.Ticker
	stopCh        chan struct{}
}

func NewDatabaseMetricsCollector(metrics *Metrics, logger *zap.Logger, db *gorm.DB) *DatabaseMetricsCollector {
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get sql.DB from gorm.DB", zap.Error(err))
		metrics.RecordDBConnectionError()
	}

	return &DatabaseMetricsCollector{
		metrics:       metrics,
		logger:        logger,
		sqlDB:         sqlDB,
		slowThreshold: 100 * time.Millisecond,
		stopCh:        make(chan struct{}),
	}
}

// Instrument registers gorm callbacks that time every create, query, update, delete and raw statement.
func (dmc *DatabaseMetricsCollector) Instrument(db *gorm.DB) error {
	cb := db.Callback()
	hooks := []struct {
		operation string
		before    func(name string, fn func(*gorm.DB)) error
		after     func(name string, fn func(*gorm.DB)) error
	}{
		{"create", cb.Create().Before("gorm:create").Register, cb.Create().After("gorm:create").Register},
		{"query", cb.Query().Before("gorm:query").Register, cb.Query().After("gorm:query").Register},
		{"update", cb.Update().Before("gorm:update").Register, cb.Update().After("gorm:update").Register},
		{"delete", cb.Delete().Before("gorm:delete").Register, cb.Delete().After("gorm:delete").Register},
		{"raw", cb.Raw().Before("gorm:raw").Register, cb.Raw().After("gorm:raw").Register},
		{"row", cb.Row().Before("gorm:row").Register, cb.Row().After("gorm:row").Register},
	}

	for _, hook := range hooks {
		if err := hook.before("metrics:before_"+hook.operation, dmc.before); err != nil {
			return err
		}
		if err := hook.after("metrics:after_"+hook.operation, dmc.after(hook.operation)); err != nil {
			return err
		}
	}

	return nil
}

func (dmc *DatabaseMetricsCollector) before(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (dmc *DatabaseMetricsCollector) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		value, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		start, ok := value.(time.Time)
		if !ok {
			return
		}

		duration := time.Since(start)
		table := db.Statement.Table
		if table == "" {
			table = "unknown"
		}

		status := "success"
		if db.Error != nil {
			status = "error"
			if errors.Is(db.Error, gorm.ErrRecordNotFound) {
				status = "not_found"
			}
		}

		dmc.metrics.RecordDBQuery(operation, table, status, duration)

		if duration > dmc.slowThreshold {
			dmc.logger.Warn("Slow database query",
				zap.String("operation", operation),
				zap.String("table", table),
				zap.String("status", status),
				zap.Duration("duration", duration),
				zap.Error(db.Error),
			)
		}
	}
}

func (dmc *DatabaseMetricsCollector) Start(interval time.Duration) {
	if dmc.sqlDB == nil {
		dmc.logger.Warn("Cannot start database metrics collector: sqlDB is nil")
		return
	}

	dmc.ticker = time.NewTicker(interval)
	go dmc.collectLoop()
	dmc.logger.Info("Database metrics collector started", zap.Duration("interval", interval))
}

func (dmc *DatabaseMetricsCollector) Stop() {
	if dmc.ticker != nil {
		dmc.ticker.Stop()
	}
	close(dmc.stopCh)
	dmc.logger.Info("Database metrics collector stopped")
}

func (dmc *DatabaseMetricsCollector) collectLoop() {
	dmc.collect()

	for {
		select {
		case <-dmc.ticker.C:
			dmc.collect()
		case <-dmc.stopCh:
			return
		}
	}
}

func (dmc *DatabaseMetricsCollector) collect() {
	if dmc.sqlDB == nil {
		return
	}

	stats := dmc.sqlDB.Stats()
	dmc.metrics.DBConnectionsInUse.Set(float64(stats.InUse))
	dmc.metrics.DBConnectionsIdle.Set(float64(stats.Idle))

	dmc.logger.Debug("Database connection stats",
		zap.Int("open_connections", stats.OpenConnections),
		zap.Int("in_use", stats.InUse),
		zap.Int("idle", stats.Idle),
		zap.Int64("wait_count", stats.WaitCount),
		zap.Duration("wait_duration", stats.WaitDuration),
	)
}

// HealthCheck pings the database.
func (dmc *DatabaseMetricsCollector) HealthCheck(ctx context.Context) error {
	if dmc.sqlDB == nil {
		dmc.metrics.RecordDBConnectionError()
		return sql.ErrConnDone
	}

	start := time.Now()
	err := dmc.sqlDB.PingContext(ctx)
	dmc.metrics.RecordDBQuery("ping", "health_check", result(err), time.Since(start))
	if err != nil {
		dmc.metrics.RecordDBConnectionError()
	}

	return err
}
