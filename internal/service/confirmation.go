package service

import (
	"context"
	"errors"

	"github.com/Behyna/subscription-engine/internal/metrics"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/notifier"
	"github.com/Behyna/subscription-engine/pkg/paymentgateway"
	"go.uber.org/zap"
)

type Outcome string

const (
	// OutcomePending means no terminal event was observed; keep polling.
	OutcomePending Outcome = "pending"
	// OutcomeFinalized means this check moved the transaction to a terminal status.
	OutcomeFinalized Outcome = "finalized"
	// OutcomeSettled means the transaction was already terminal or no longer exists.
	OutcomeSettled Outcome = "settled"
)

func (o Outcome) Done() bool {
	return o == OutcomeFinalized || o == OutcomeSettled
}

type ConfirmationService interface {
	// Check runs one poll tick: authorize, query events and finalize on a terminal event.
	Check(ctx context.Context, reference, payerNumber string) (Outcome, error)
	// Expire fails a transaction that was never confirmed within the polling horizon.
	Expire(ctx context.Context, reference string) (Outcome, error)
	// Settle moves a PENDING transaction to a terminal status and broadcasts the change.
	Settle(ctx context.Context, cmd UpdateStatusCommand) (*model.Transaction, error)
}

type confirmation struct {
	gateway      paymentgateway.PaymentGateway
	transactions TransactionService
	notifier     notifier.Notifier
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewConfirmationService(gateway paymentgateway.PaymentGateway, transactions TransactionService,
	notifier notifier.Notifier, metrics *metrics.Metrics, logger *zap.Logger) ConfirmationService {
	return &confirmation{
		gateway:      gateway,
		transactions: transactions,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
	}
}

func (c *confirmation) Check(ctx context.Context, reference, payerNumber string) (Outcome, error) {
	token, err := c.gateway.Authorize(ctx)
	c.metrics.RecordGatewayRequest("authorize", err)
	if err != nil {
		return OutcomePending, gatewayError(err)
	}

	events, err := c.gateway.Events(ctx, token.Access, paymentgateway.EventsQuery{
		Reference: reference,
		Phone:     payerNumber,
	})
	c.metrics.RecordGatewayRequest("events", err)
	if err != nil {
		return OutcomePending, gatewayError(err)
	}

	event, found := terminalEvent(events, reference)
	if !found {
		c.logger.Debug("No terminal event yet", zap.String("reference", reference), zap.Int("events", len(events)))
		return OutcomePending, nil
	}

	cmd := UpdateStatusCommand{Reference: reference, Status: model.TransactionStatusCompleted}
	if event.IsFailed() {
		reason := model.FailureReasonGateway
		cmd.Status = model.TransactionStatusFailed
		cmd.Reason = &reason
	}

	return c.finalize(ctx, cmd)
}

func (c *confirmation) Expire(ctx context.Context, reference string) (Outcome, error) {
	reason := model.FailureReasonExpired
	return c.finalize(ctx, UpdateStatusCommand{
		Reference: reference,
		Status:    model.TransactionStatusFailed,
		Reason:    &reason,
	})
}

func (c *confirmation) finalize(ctx context.Context, cmd UpdateStatusCommand) (Outcome, error) {
	if _, err := c.Settle(ctx, cmd); err != nil {
		if errors.Is(err, ErrInvalidTransition) || errors.Is(err, ErrTransactionNotFound) {
			c.logger.Info("Transaction already settled, stopping confirmation",
				zap.String("reference", cmd.Reference),
				zap.Error(err))
			return OutcomeSettled, nil
		}
		return OutcomePending, err
	}

	return OutcomeFinalized, nil
}

func (c *confirmation) Settle(ctx context.Context, cmd UpdateStatusCommand) (*model.Transaction, error) {
	transaction, err := c.transactions.UpdateStatus(ctx, cmd)
	if err != nil {
		return nil, err
	}

	payload := notifier.TransactionStatusChanged{
		Reference:     transaction.Reference,
		UserID:        transaction.UserID,
		Service:       string(transaction.Service),
		Status:        string(transaction.Status),
		RemainingTime: transaction.RemainingTime,
	}
	if transaction.FailureReason != nil {
		payload.Reason = *transaction.FailureReason
	}

	err = c.notifier.Publish(ctx, notifier.EventTransactionStatusChanged, payload)
	c.metrics.RecordNotification(err)
	if err != nil {
		c.logger.Warn("Failed to publish status change",
			zap.Error(err),
			zap.String("reference", transaction.Reference))
	}

	return transaction, nil
}

// terminalEvent returns the first successful or failed event for reference. A successful event wins
// over a failed one when both are present.
func terminalEvent(events []paymentgateway.Event, reference string) (paymentgateway.Event, bool) {
	var (
		failed    paymentgateway.Event
		hasFailed bool
	)

	for _, event := range events {
		if event.Data.Reference != reference {
			continue
		}
		if event.IsSuccessful() {
			return event, true
		}
		if event.IsFailed() && !hasFailed {
			failed, hasFailed = event, true
		}
	}

	return failed, hasFailed
}
