package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/metrics"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/repository"
	"github.com/Behyna/subscription-engine/pkg/paymentgateway"
	"go.uber.org/zap"
)

// PollerRegistry starts confirmation polling for a pending transaction.
type PollerRegistry interface {
	Register(transaction model.Transaction) bool
}

type PaymentService interface {
	Initiate(ctx context.Context, cmd InitiatePaymentCommand) (*InitiatePaymentResponse, error)
}

type payment struct {
	gateway      paymentgateway.PaymentGateway
	transactions TransactionService
	users        repository.UserRepository
	pollers      PollerRegistry
	metrics      *metrics.Metrics
	logger       *zap.Logger
}

func NewPaymentService(gateway paymentgateway.PaymentGateway, transactions TransactionService,
	users repository.UserRepository, pollers PollerRegistry, metrics *metrics.Metrics, logger *zap.Logger) PaymentService {
	return &payment{
		gateway:      gateway,
		transactions: transactions,
		users:        users,
		pollers:      pollers,
		metrics:      metrics,
		logger:       logger,
	}
}

func (p *payment) Initiate(ctx context.Context, cmd InitiatePaymentCommand) (*InitiatePaymentResponse, error) {
	if cmd.Amount <= 0 {
		return nil, validationError(ErrInvalidAmount)
	}
	if cmd.Duration < 0 {
		return nil, validationError(ErrInvalidDuration)
	}
	if !cmd.Service.Valid() {
		return nil, validationError(ErrInvalidService)
	}

	if _, err := p.users.GetByID(ctx, cmd.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, NewServiceError(constants.ErrCodeUserNotFound, ErrUserNotFound)
		}
		return nil, err
	}

	token, err := p.gateway.Authorize(ctx)
	p.metrics.RecordGatewayRequest("authorize", err)
	if err != nil {
		p.logger.Error("Gateway authorization failed", zap.Error(err), zap.String("userID", cmd.UserID))
		p.metrics.RecordPaymentInitiated(string(model.PaymentMethodUnknown), "gateway_error")
		return nil, gatewayError(err)
	}

	cashIn, err := p.gateway.CashIn(ctx, token.Access, paymentgateway.CashInRequest{
		Amount: cmd.Amount,
		Number: cmd.PayerNumber,
	})
	p.metrics.RecordGatewayRequest("cashin", err)
	if err != nil {
		p.logger.Error("Cash-in request failed",
			zap.Error(err),
			zap.String("userID", cmd.UserID),
			zap.Int64("amount", cmd.Amount))
		p.metrics.RecordPaymentInitiated(string(model.PaymentMethodUnknown), "gateway_error")
		return nil, gatewayError(err)
	}

	method := model.MethodFromProvider(cashIn.Provider)
	transaction := &model.Transaction{
		Reference:   cashIn.Reference,
		Gateway:     p.gateway.Name(),
		UserID:      cmd.UserID,
		PayerNumber: cmd.PayerNumber,
		Amount:      cmd.Amount,
		Method:      method,
		Duration:    cmd.Duration,
		Service:     cmd.Service,
		Status:      model.TransactionStatusPending,
	}

	if err := p.transactions.Create(ctx, transaction); err != nil {
		p.metrics.RecordPersistenceInconsistency()
		p.metrics.RecordPaymentInitiated(string(method), "persistence_error")
		p.logger.Error("CRITICAL: payment accepted by gateway but not recorded",
			zap.Error(err),
			zap.String("reference", cashIn.Reference),
			zap.String("gateway", p.gateway.Name()),
			zap.String("userID", cmd.UserID),
			zap.String("payerNumber", cmd.PayerNumber),
			zap.Int64("amount", cmd.Amount))
		return nil, NewServiceError(constants.ErrCodePersistenceInconsistency,
			fmt.Errorf("%w: reference %s: %v", ErrPersistenceInconsistency, cashIn.Reference, err))
	}

	p.pollers.Register(*transaction)
	p.metrics.RecordPaymentInitiated(string(method), "success")

	p.logger.Info("Payment initiated",
		zap.String("reference", transaction.Reference),
		zap.String("userID", cmd.UserID),
		zap.String("method", string(method)),
		zap.Int64("amount", cmd.Amount))

	return &InitiatePaymentResponse{
		Provider: ProviderResponse{
			Reference: cashIn.Reference,
			Status:    cashIn.Status,
			Amount:    cashIn.Amount,
			Provider:  cashIn.Provider,
			Kind:      cashIn.Kind,
			CreatedAt: cashIn.CreatedAt,
		},
		Transaction: NewTransaction(transaction),
	}, nil
}
