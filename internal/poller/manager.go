package poller

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Behyna/subscription-engine/internal/metrics"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/service"
	"go.uber.org/zap"
)

type Config struct {
	Interval    time.Duration
	TickTimeout time.Duration
	MaxHorizon  time.Duration
}

// PendingLister lists transactions still waiting for confirmation.
type PendingLister interface {
	ListPending(ctx context.Context) ([]model.Transaction, error)
}

// Handle controls a single running poller.
type Handle struct {
	Reference string
	Deadline  time.Time
	cancel    context.CancelFunc
	done      chan struct{}
}

// Done is closed once the poller goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Manager runs one confirmation poller per pending transaction reference. Pollers share nothing
// but the handle registry, so a slow gateway call for one reference never delays another.
type Manager struct {
	confirmation service.ConfirmationService
	cfg          Config
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time

	mu      sync.Mutex
	handles map[string]*Handle
	closed  bool
	wg      sync.WaitGroup
	ctx     context.Context
	stop    context.CancelFunc
}

func NewManager(confirmation service.ConfirmationService, cfg Config, metrics *metrics.Metrics, logger *zap.Logger) *Manager {
	ctx, stop := context.WithCancel(context.Background())
	return &Manager{
		confirmation: confirmation,
		cfg:          cfg,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
		handles:      make(map[string]*Handle),
		ctx:          ctx,
		stop:         stop,
	}
}

// Register starts polling for transaction. It returns false when the reference is already being
// polled or the manager has been shut down.
func (m *Manager) Register(transaction model.Transaction) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return false
	}
	if _, exists := m.handles[transaction.Reference]; exists {
		return false
	}

	createdAt := transaction.CreatedAt
	if createdAt.IsZero() {
		createdAt = m.now()
	}

	ctx, cancel := context.WithCancel(m.ctx)
	handle := &Handle{
		Reference: transaction.Reference,
		Deadline:  createdAt.Add(m.cfg.MaxHorizon),
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	m.handles[transaction.Reference] = handle

	m.wg.Add(1)
	m.metrics.PollersActive.Inc()
	go m.run(ctx, handle, transaction.PayerNumber)

	m.logger.Info("Confirmation poller registered",
		zap.String("reference", transaction.Reference),
		zap.Time("deadline", handle.Deadline))

	return true
}

// Cancel stops the poller for reference without touching the transaction.
func (m *Manager) Cancel(reference string) bool {
	m.mu.Lock()
	handle, exists := m.handles[reference]
	m.mu.Unlock()

	if !exists {
		return false
	}

	handle.cancel()
	m.logger.Info("Confirmation poller cancelled", zap.String("reference", reference))
	return true
}

func (m *Manager) Handle(reference string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	handle, exists := m.handles[reference]
	return handle, exists
}

// Active returns the references currently being polled, sorted.
func (m *Manager) Active() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	references := make([]string, 0, len(m.handles))
	for reference := range m.handles {
		references = append(references, reference)
	}
	sort.Strings(references)
	return references
}

// Resume registers a poller for every transaction still PENDING in the store.
func (m *Manager) Resume(ctx context.Context, lister PendingLister) (int, error) {
	pending, err := lister.ListPending(ctx)
	if err != nil {
		return 0, err
	}

	resumed := 0
	for _, transaction := range pending {
		if m.Register(transaction) {
			resumed++
		}
	}

	m.logger.Info("Confirmation pollers resumed", zap.Int("pending", len(pending)), zap.Int("resumed", resumed))
	return resumed, nil
}

// Shutdown cancels every poller and waits for them to exit or for ctx to expire.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.stop()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info("Confirmation pollers stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) run(ctx context.Context, handle *Handle, payerNumber string) {
	defer func() {
		handle.cancel()
		m.remove(handle)
		m.metrics.PollersActive.Dec()
		close(handle.done)
		m.wg.Done()
	}()

	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if m.tick(ctx, handle, payerNumber) {
				return
			}
		}
	}
}

// tick performs one confirmation check and, once the horizon has passed, expires the transaction.
// It reports whether polling should stop.
func (m *Manager) tick(ctx context.Context, handle *Handle, payerNumber string) bool {
	outcome, err := m.check(ctx, handle.Reference, payerNumber)
	if err != nil {
		m.metrics.RecordPollTick("error")
		m.logger.Warn("Confirmation check failed",
			zap.Error(err),
			zap.String("reference", handle.Reference))
	} else {
		m.metrics.RecordPollTick(string(outcome))
	}

	if outcome.Done() {
		m.logger.Info("Confirmation poller finished",
			zap.String("reference", handle.Reference),
			zap.String("outcome", string(outcome)))
		return true
	}

	if m.now().Before(handle.Deadline) {
		return false
	}

	outcome, err = m.expire(ctx, handle.Reference)
	if err != nil {
		m.logger.Error("Failed to expire unconfirmed transaction",
			zap.Error(err),
			zap.String("reference", handle.Reference))
		return false
	}

	m.metrics.RecordPollTick("expired")
	m.logger.Warn("Transaction expired without confirmation",
		zap.String("reference", handle.Reference),
		zap.Time("deadline", handle.Deadline))
	return outcome.Done()
}

// check and expire each get their own TickTimeout so a hung gateway cannot starve the expiry.
func (m *Manager) check(ctx context.Context, reference, payerNumber string) (service.Outcome, error) {
	checkCtx, cancel := context.WithTimeout(ctx, m.cfg.TickTimeout)
	defer cancel()

	return m.confirmation.Check(checkCtx, reference, payerNumber)
}

func (m *Manager) expire(ctx context.Context, reference string) (service.Outcome, error) {
	expireCtx, cancel := context.WithTimeout(ctx, m.cfg.TickTimeout)
	defer cancel()

	return m.confirmation.Expire(expireCtx, reference)
}

func (m *Manager) remove(handle *Handle) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, exists := m.handles[handle.Reference]; exists && current == handle {
		delete(m.handles, handle.Reference)
	}
}
