package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/mocks"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/notifier"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/Behyna/subscription-engine/pkg/paymentgateway"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type confirmationFixture struct {
	gateway      *mocks.PaymentGateway
	transactions *mocks.TransactionService
	notifier     *mocks.Notifier
	svc          service.ConfirmationService
}

func newConfirmationFixture() *confirmationFixture {
	f := &confirmationFixture{
		gateway:      &mocks.PaymentGateway{},
		transactions: &mocks.TransactionService{},
		notifier:     &mocks.Notifier{},
	}
	f.svc = service.NewConfirmationService(f.gateway, f.transactions, f.notifier, newMetrics(), zap.NewNop())
	return f
}

func event(reference, status string) paymentgateway.Event {
	return paymentgateway.Event{
		EventKind: "transaction:processed",
		Data:      paymentgateway.EventData{Reference: reference, Status: status, Kind: "CASHIN"},
	}
}

func TestConfirmation_Check(t *testing.T) {
	ctx := context.Background()
	token := paymentgateway.AccessToken{Access: "token"}
	query := paymentgateway.EventsQuery{Reference: "R1", Phone: "0788000000"}

	t.Run("No terminal event keeps polling", func(t *testing.T) {
		f := newConfirmationFixture()
		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("Events", ctx, "token", query).Return([]paymentgateway.Event{event("R1", "pending")}, nil)

		outcome, err := f.svc.Check(ctx, "R1", "0788000000")

		require.NoError(t, err)
		assert.Equal(t, service.OutcomePending, outcome)
		assert.False(t, outcome.Done())
		f.transactions.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything)
	})

	t.Run("Successful event completes and publishes", func(t *testing.T) {
		f := newConfirmationFixture()
		completed := pendingTransaction("R1", 1)
		completed.Status = model.TransactionStatusCompleted
		completed.RemainingTime = 30

		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("Events", ctx, "token", query).Return([]paymentgateway.Event{
			event("OTHER", "failed"),
			event("R1", "successful"),
		}, nil)
		f.transactions.On("UpdateStatus", ctx, service.UpdateStatusCommand{
			Reference: "R1",
			Status:    model.TransactionStatusCompleted,
		}).Return(completed, nil).Once()
		f.notifier.On("Publish", ctx, notifier.EventTransactionStatusChanged, notifier.TransactionStatusChanged{
			Reference:     "R1",
			UserID:        "U1",
			Service:       "TIN_MANAGEMENT",
			Status:        "COMPLETED",
			RemainingTime: 30,
		}).Return(nil).Once()

		outcome, err := f.svc.Check(ctx, "R1", "0788000000")

		require.NoError(t, err)
		assert.Equal(t, service.OutcomeFinalized, outcome)
		assert.True(t, outcome.Done())
		f.transactions.AssertExpectations(t)
		f.notifier.AssertExpectations(t)
	})

	t.Run("Failed event fails with gateway reason", func(t *testing.T) {
		f := newConfirmationFixture()
		failed := pendingTransaction("R1", 1)
		failed.Status = model.TransactionStatusFailed
		reason := model.FailureReasonGateway
		failed.FailureReason = &reason

		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("Events", ctx, "token", query).Return([]paymentgateway.Event{event("R1", "FAILED")}, nil)
		f.transactions.On("UpdateStatus", ctx, mock.MatchedBy(func(cmd service.UpdateStatusCommand) bool {
			return cmd.Status == model.TransactionStatusFailed && cmd.Reason != nil && *cmd.Reason == reason
		})).Return(failed, nil).Once()
		f.notifier.On("Publish", ctx, notifier.EventTransactionStatusChanged, mock.MatchedBy(func(p notifier.TransactionStatusChanged) bool {
			return p.Status == "FAILED" && p.Reason == reason
		})).Return(nil).Once()

		outcome, err := f.svc.Check(ctx, "R1", "0788000000")

		require.NoError(t, err)
		assert.Equal(t, service.OutcomeFinalized, outcome)
		f.notifier.AssertExpectations(t)
	})

	t.Run("Events for other references are ignored", func(t *testing.T) {
		f := newConfirmationFixture()
		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("Events", ctx, "token", query).Return([]paymentgateway.Event{event("R9", "successful")}, nil)

		outcome, err := f.svc.Check(ctx, "R1", "0788000000")

		require.NoError(t, err)
		assert.Equal(t, service.OutcomePending, outcome)
	})

	t.Run("Authorization failure is retried on the next tick", func(t *testing.T) {
		f := newConfirmationFixture()
		f.gateway.On("Authorize", ctx).Return(paymentgateway.AccessToken{}, paymentgateway.ErrUnauthorized)

		outcome, err := f.svc.Check(ctx, "R1", "0788000000")

		assert.Equal(t, service.OutcomePending, outcome)
		assertServiceError(t, err, constants.ErrCodeGatewayAuthFailed)
		f.gateway.AssertNotCalled(t, "Events", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Query failure keeps polling", func(t *testing.T) {
		f := newConfirmationFixture()
		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("Events", ctx, "token", query).Return(nil, paymentgateway.ErrTimeout)

		outcome, err := f.svc.Check(ctx, "R1", "0788000000")

		assert.Equal(t, service.OutcomePending, outcome)
		assertServiceError(t, err, constants.ErrCodeGatewayRequestFailed)
	})

	t.Run("Already terminal transaction settles without publishing", func(t *testing.T) {
		f := newConfirmationFixture()
		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("Events", ctx, "token", query).Return([]paymentgateway.Event{event("R1", "successful")}, nil)
		f.transactions.On("UpdateStatus", ctx, mock.Anything).
			Return(nil, service.NewServiceError(constants.ErrCodeInvalidTransition, service.ErrInvalidTransition))

		outcome, err := f.svc.Check(ctx, "R1", "0788000000")

		require.NoError(t, err)
		assert.Equal(t, service.OutcomeSettled, outcome)
		f.notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Store failure keeps polling", func(t *testing.T) {
		f := newConfirmationFixture()
		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("Events", ctx, "token", query).Return([]paymentgateway.Event{event("R1", "successful")}, nil)
		f.transactions.On("UpdateStatus", ctx, mock.Anything).Return(nil, errors.New("deadlock"))

		outcome, err := f.svc.Check(ctx, "R1", "0788000000")

		assert.Error(t, err)
		assert.Equal(t, service.OutcomePending, outcome)
	})

	t.Run("Publish failure does not undo finalization", func(t *testing.T) {
		f := newConfirmationFixture()
		completed := pendingTransaction("R1", 1)
		completed.Status = model.TransactionStatusCompleted

		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("Events", ctx, "token", query).Return([]paymentgateway.Event{event("R1", "successful")}, nil)
		f.transactions.On("UpdateStatus", ctx, mock.Anything).Return(completed, nil)
		f.notifier.On("Publish", ctx, mock.Anything, mock.Anything).Return(errors.New("broker down"))

		outcome, err := f.svc.Check(ctx, "R1", "0788000000")

		require.NoError(t, err)
		assert.Equal(t, service.OutcomeFinalized, outcome)
	})
}

func TestConfirmation_Expire(t *testing.T) {
	ctx := context.Background()
	f := newConfirmationFixture()

	expired := pendingTransaction("R1", 1)
	expired.Status = model.TransactionStatusFailed
	reason := model.FailureReasonExpired
	expired.FailureReason = &reason

	f.transactions.On("UpdateStatus", ctx, mock.MatchedBy(func(cmd service.UpdateStatusCommand) bool {
		return cmd.Reference == "R1" && cmd.Status == model.TransactionStatusFailed &&
			cmd.Reason != nil && *cmd.Reason == model.FailureReasonExpired
	})).Return(expired, nil).Once()
	f.notifier.On("Publish", ctx, notifier.EventTransactionStatusChanged, mock.MatchedBy(func(p notifier.TransactionStatusChanged) bool {
		return p.Reason == model.FailureReasonExpired
	})).Return(nil).Once()

	outcome, err := f.svc.Expire(ctx, "R1")

	require.NoError(t, err)
	assert.Equal(t, service.OutcomeFinalized, outcome)
	f.transactions.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestConfirmation_Settle(t *testing.T) {
	ctx := context.Background()

	t.Run("Manual settlement is broadcast", func(t *testing.T) {
		f := newConfirmationFixture()

		completed := pendingTransaction("R1", 2)
		completed.Status = model.TransactionStatusCompleted
		completed.RemainingTime = 60

		cmd := service.UpdateStatusCommand{Reference: "R1", Status: model.TransactionStatusCompleted}
		f.transactions.On("UpdateStatus", ctx, cmd).Return(completed, nil).Once()
		f.notifier.On("Publish", ctx, notifier.EventTransactionStatusChanged, mock.MatchedBy(func(p notifier.TransactionStatusChanged) bool {
			return p.Reference == "R1" && p.Status == "COMPLETED" && p.RemainingTime == 60
		})).Return(nil).Once()

		transaction, err := f.svc.Settle(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, 60, transaction.RemainingTime)
		f.notifier.AssertExpectations(t)
	})

	t.Run("Rejected transition is returned to the caller", func(t *testing.T) {
		f := newConfirmationFixture()

		f.transactions.On("UpdateStatus", ctx, mock.Anything).
			Return(nil, service.NewServiceError(constants.ErrCodeInvalidTransition, service.ErrInvalidTransition))

		transaction, err := f.svc.Settle(ctx, service.UpdateStatusCommand{Reference: "R1", Status: model.TransactionStatusFailed})

		assert.Nil(t, transaction)
		assertServiceError(t, err, constants.ErrCodeInvalidTransition)
		f.notifier.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	})
}
