package poller_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Behyna/subscription-engine/internal/metrics"
	"github.com/Behyna/subscription-engine/internal/mocks"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/poller"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

func newManager(confirmation service.ConfirmationService, horizon time.Duration) (*poller.Manager, *metrics.Metrics) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	return poller.NewManager(confirmation, poller.Config{
		Interval:    10 * time.Millisecond,
		TickTimeout: time.Second,
		MaxHorizon:  horizon,
	}, m, zap.NewNop()), m
}

// hangingConfirmation never gets an answer from the gateway and honours ctx when expiring.
type hangingConfirmation struct {
	expired atomic.Int32
}

func (h *hangingConfirmation) Check(ctx context.Context, _, _ string) (service.Outcome, error) {
	<-ctx.Done()
	return service.OutcomePending, ctx.Err()
}

func (h *hangingConfirmation) Expire(ctx context.Context, _ string) (service.Outcome, error) {
	if err := ctx.Err(); err != nil {
		return service.OutcomePending, err
	}
	h.expired.Add(1)
	return service.OutcomeFinalized, nil
}

func (h *hangingConfirmation) Settle(context.Context, service.UpdateStatusCommand) (*model.Transaction, error) {
	return nil, errors.New("not used")
}

func transaction(reference string) model.Transaction {
	return model.Transaction{
		Reference:   reference,
		PayerNumber: "0788000000",
		Status:      model.TransactionStatusPending,
		CreatedAt:   time.Now(),
	}
}

func shutdown(t *testing.T, manager *poller.Manager) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), waitFor)
	defer cancel()
	require.NoError(t, manager.Shutdown(ctx))
}

func TestManager_StopsAfterTerminalOutcome(t *testing.T) {
	confirmation := &mocks.ConfirmationService{}
	manager, m := newManager(confirmation, time.Hour)
	defer shutdown(t, manager)

	confirmation.On("Check", mock.Anything, "R1", "0788000000").Return(service.OutcomePending, nil).Once()
	confirmation.On("Check", mock.Anything, "R1", "0788000000").Return(service.OutcomeFinalized, nil).Once()

	require.True(t, manager.Register(transaction("R1")))
	handle, ok := manager.Handle("R1")
	require.True(t, ok)

	select {
	case <-handle.Done():
	case <-time.After(waitFor):
		t.Fatal("poller did not stop after terminal outcome")
	}

	time.Sleep(30 * time.Millisecond)
	confirmation.AssertNumberOfCalls(t, "Check", 2)
	assert.Empty(t, manager.Active())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PollersActive))
}

func TestManager_TransientErrorsKeepPolling(t *testing.T) {
	confirmation := &mocks.ConfirmationService{}
	manager, _ := newManager(confirmation, time.Hour)
	defer shutdown(t, manager)

	confirmation.On("Check", mock.Anything, "R1", mock.Anything).
		Return(service.OutcomePending, errors.New("gateway timeout")).Twice()
	confirmation.On("Check", mock.Anything, "R1", mock.Anything).Return(service.OutcomeSettled, nil).Once()

	require.True(t, manager.Register(transaction("R1")))

	require.Eventually(t, func() bool { return len(manager.Active()) == 0 }, waitFor, tick)
	confirmation.AssertNumberOfCalls(t, "Check", 3)
}

func TestManager_RegisterIsIdempotent(t *testing.T) {
	confirmation := &mocks.ConfirmationService{}
	manager, _ := newManager(confirmation, time.Hour)
	defer shutdown(t, manager)

	confirmation.On("Check", mock.Anything, "R1", mock.Anything).Return(service.OutcomePending, nil)

	assert.True(t, manager.Register(transaction("R1")))
	assert.False(t, manager.Register(transaction("R1")))
	assert.Equal(t, []string{"R1"}, manager.Active())
}

func TestManager_Cancel(t *testing.T) {
	confirmation := &mocks.ConfirmationService{}
	manager, _ := newManager(confirmation, time.Hour)
	defer shutdown(t, manager)

	confirmation.On("Check", mock.Anything, "R1", mock.Anything).Return(service.OutcomePending, nil)

	require.True(t, manager.Register(transaction("R1")))
	assert.True(t, manager.Cancel("R1"))
	assert.False(t, manager.Cancel("unknown"))

	require.Eventually(t, func() bool { return len(manager.Active()) == 0 }, waitFor, tick)
	confirmation.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything)
}

func TestManager_ExpiresAfterHorizon(t *testing.T) {
	confirmation := &mocks.ConfirmationService{}
	manager, _ := newManager(confirmation, time.Hour)
	defer shutdown(t, manager)

	stale := transaction("R1")
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)

	confirmation.On("Check", mock.Anything, "R1", mock.Anything).Return(service.OutcomePending, nil).Once()
	confirmation.On("Expire", mock.Anything, "R1").Return(service.OutcomeFinalized, nil).Once()

	require.True(t, manager.Register(stale))

	require.Eventually(t, func() bool { return len(manager.Active()) == 0 }, waitFor, tick)
	confirmation.AssertExpectations(t)
}

func TestManager_ConfirmationBeforeHorizonSkipsExpiry(t *testing.T) {
	confirmation := &mocks.ConfirmationService{}
	manager, _ := newManager(confirmation, time.Hour)
	defer shutdown(t, manager)

	stale := transaction("R1")
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)
	confirmation.On("Check", mock.Anything, "R1", mock.Anything).Return(service.OutcomeFinalized, nil).Once()

	require.True(t, manager.Register(stale))

	require.Eventually(t, func() bool { return len(manager.Active()) == 0 }, waitFor, tick)
	confirmation.AssertNotCalled(t, "Expire", mock.Anything, mock.Anything)
}

func TestManager_PollersAreIndependent(t *testing.T) {
	confirmation := &mocks.ConfirmationService{}
	manager, _ := newManager(confirmation, time.Hour)
	defer shutdown(t, manager)

	release := make(chan struct{})
	confirmation.On("Check", mock.Anything, "SLOW", mock.Anything).
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			select {
			case <-release:
			case <-ctx.Done():
			}
		}).
		Return(service.OutcomePending, nil)
	confirmation.On("Check", mock.Anything, "FAST", mock.Anything).Return(service.OutcomeFinalized, nil).Once()

	require.True(t, manager.Register(transaction("SLOW")))
	require.True(t, manager.Register(transaction("FAST")))

	require.Eventually(t, func() bool {
		active := manager.Active()
		return len(active) == 1 && active[0] == "SLOW"
	}, waitFor, tick)

	close(release)
}

func TestManager_ShutdownStopsEverything(t *testing.T) {
	confirmation := &mocks.ConfirmationService{}
	manager, m := newManager(confirmation, time.Hour)

	confirmation.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(service.OutcomePending, nil)

	for _, reference := range []string{"R1", "R2", "R3"} {
		require.True(t, manager.Register(transaction(reference)))
	}
	assert.Len(t, manager.Active(), 3)

	shutdown(t, manager)

	assert.Empty(t, manager.Active())
	assert.Equal(t, 0.0, testutil.ToFloat64(m.PollersActive))
	assert.False(t, manager.Register(transaction("R4")))
}

func TestManager_Resume(t *testing.T) {
	confirmation := &mocks.ConfirmationService{}
	transactions := &mocks.TransactionService{}
	manager, _ := newManager(confirmation, time.Hour)
	defer shutdown(t, manager)

	confirmation.On("Check", mock.Anything, mock.Anything, mock.Anything).Return(service.OutcomePending, nil)
	transactions.On("ListPending", mock.Anything).Return([]model.Transaction{transaction("R1"), transaction("R2")}, nil)

	require.True(t, manager.Register(transaction("R1")))
	resumed, err := manager.Resume(context.Background(), transactions)

	require.NoError(t, err)
	assert.Equal(t, 1, resumed)
	assert.Equal(t, []string{"R1", "R2"}, manager.Active())
}

func TestManager_ResumeListFailure(t *testing.T) {
	transactions := &mocks.TransactionService{}
	manager, _ := newManager(&mocks.ConfirmationService{}, time.Hour)
	defer shutdown(t, manager)

	transactions.On("ListPending", mock.Anything).Return(nil, errors.New("db down"))

	_, err := manager.Resume(context.Background(), transactions)

	assert.EqualError(t, err, "db down")
}

func TestManager_ExpiresWhenGatewayHangs(t *testing.T) {
	confirmation := &hangingConfirmation{}
	manager := poller.NewManager(confirmation, poller.Config{
		Interval:    5 * time.Millisecond,
		TickTimeout: 20 * time.Millisecond,
		MaxHorizon:  time.Millisecond,
	}, metrics.NewMetrics(prometheus.NewRegistry()), zap.NewNop())
	defer shutdown(t, manager)

	stale := transaction("R1")
	stale.CreatedAt = time.Now().Add(-time.Hour)
	require.True(t, manager.Register(stale))

	require.Eventually(t, func() bool { return len(manager.Active()) == 0 }, waitFor, tick)
	assert.Equal(t, int32(1), confirmation.expired.Load())
}
