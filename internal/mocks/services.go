package mocks

import (
	"context"
	"time"

	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/stretchr/testify/mock"
)

type TransactionService struct {
	mock.Mock
}

func (m *TransactionService) Create(ctx context.Context, transaction *model.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *TransactionService) Get(ctx context.Context, reference string) (*model.Transaction, error) {
	args := m.Called(ctx, reference)
	transaction, _ := args.Get(0).(*model.Transaction)
	return transaction, args.Error(1)
}

func (m *TransactionService) UpdateStatus(ctx context.Context, cmd service.UpdateStatusCommand) (*model.Transaction, error) {
	args := m.Called(ctx, cmd)
	transaction, _ := args.Get(0).(*model.Transaction)
	return transaction, args.Error(1)
}

func (m *TransactionService) UpdateFields(ctx context.Context, cmd service.UpdateFieldsCommand) (*model.Transaction, error) {
	args := m.Called(ctx, cmd)
	transaction, _ := args.Get(0).(*model.Transaction)
	return transaction, args.Error(1)
}

func (m *TransactionService) DecrementRemainingTime(ctx context.Context, reference, day string) error {
	args := m.Called(ctx, reference, day)
	return args.Error(0)
}

func (m *TransactionService) ListActive(ctx context.Context, day string) ([]model.Transaction, error) {
	args := m.Called(ctx, day)
	transactions, _ := args.Get(0).([]model.Transaction)
	return transactions, args.Error(1)
}

func (m *TransactionService) ListPending(ctx context.Context) ([]model.Transaction, error) {
	args := m.Called(ctx)
	transactions, _ := args.Get(0).([]model.Transaction)
	return transactions, args.Error(1)
}

func (m *TransactionService) ListByUser(ctx context.Context, query service.ListTransactionsQuery) (service.ListTransactionsResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(service.ListTransactionsResponse), args.Error(1)
}

func (m *TransactionService) AggregateTotals(ctx context.Context) (service.TotalsResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).(service.TotalsResponse), args.Error(1)
}

func (m *TransactionService) Delete(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}

type PaymentService struct {
	mock.Mock
}

func (m *PaymentService) Initiate(ctx context.Context, cmd service.InitiatePaymentCommand) (*service.InitiatePaymentResponse, error) {
	args := m.Called(ctx, cmd)
	response, _ := args.Get(0).(*service.InitiatePaymentResponse)
	return response, args.Error(1)
}

type ConfirmationService struct {
	mock.Mock
}

func (m *ConfirmationService) Check(ctx context.Context, reference, payerNumber string) (service.Outcome, error) {
	args := m.Called(ctx, reference, payerNumber)
	return args.Get(0).(service.Outcome), args.Error(1)
}

func (m *ConfirmationService) Expire(ctx context.Context, reference string) (service.Outcome, error) {
	args := m.Called(ctx, reference)
	return args.Get(0).(service.Outcome), args.Error(1)
}

func (m *ConfirmationService) Settle(ctx context.Context, cmd service.UpdateStatusCommand) (*model.Transaction, error) {
	args := m.Called(ctx, cmd)
	transaction, _ := args.Get(0).(*model.Transaction)
	return transaction, args.Error(1)
}

type DecayService struct {
	mock.Mock
}

func (m *DecayService) Run(ctx context.Context, at time.Time) (service.DecayResult, error) {
	args := m.Called(ctx, at)
	return args.Get(0).(service.DecayResult), args.Error(1)
}

type SubscriptionService struct {
	mock.Mock
}

func (m *SubscriptionService) CheckSubscriptionStatus(ctx context.Context, userID string, svc model.Service) (service.SubscriptionStatus, error) {
	args := m.Called(ctx, userID, svc)
	return args.Get(0).(service.SubscriptionStatus), args.Error(1)
}

type PollerRegistry struct {
	mock.Mock
}

func (m *PollerRegistry) Register(transaction model.Transaction) bool {
	args := m.Called(transaction)
	return args.Bool(0)
}

func (m *PollerRegistry) Cancel(reference string) bool {
	args := m.Called(reference)
	return args.Bool(0)
}

func (m *PollerRegistry) Active() []string {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]string)
	}
	return nil
}

type HealthChecker struct {
	mock.Mock
}

func (m *HealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
