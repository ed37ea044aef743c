package metrics

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
)

// BacklogFunc reports how many transactions are still PENDING.
type BacklogFunc func(ctx context.Context) (int, error)

// RuntimeCollector samples process statistics and the confirmation backlog on a fixed interval.
type RuntimeCollector struct {
	metrics   *Metrics
	logger    *zap.Logger
	backlog   BacklogFunc
	startedAt time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// NewRuntimeCollector builds a collector. backlog may be nil for processes that do not poll.
func NewRuntimeCollector(metrics *Metrics, logger *zap.Logger, backlog BacklogFunc) *RuntimeCollector {
	return &RuntimeCollector{
		metrics:   metrics,
		logger:    logger,
		backlog:   backlog,
		startedAt: time.Now(),
	}
}

func (rc *RuntimeCollector) Start(interval time.Duration) {
	ctx, cancel := context.WithCancel(context.Background())
	rc.cancel = cancel
	rc.done = make(chan struct{})

	go func() {
		defer close(rc.done)

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			rc.sample(ctx)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func (rc *RuntimeCollector) Stop() {
	if rc.cancel == nil {
		return
	}
	rc.cancel()
	<-rc.done
}

func (rc *RuntimeCollector) sample(ctx context.Context) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	rc.metrics.UpdateSystemMetrics(time.Since(rc.startedAt), &memStats)

	if rc.backlog == nil {
		return
	}

	sampleCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pending, err := rc.backlog(sampleCtx)
	if err != nil {
		if ctx.Err() == nil {
			rc.logger.Warn("Failed to sample pending backlog", zap.Error(err))
		}
		return
	}
	rc.metrics.SetPendingBacklog(pending)
}
