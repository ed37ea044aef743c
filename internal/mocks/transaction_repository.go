package mocks

import (
	"context"

	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/repository"
	"github.com/stretchr/testify/mock"
)

type TransactionRepository struct {
	mock.Mock
}

func (m *TransactionRepository) Create(ctx context.Context, transaction *model.Transaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *TransactionRepository) GetByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	args := m.Called(ctx, reference)
	transaction, _ := args.Get(0).(*model.Transaction)
	return transaction, args.Error(1)
}

func (m *TransactionRepository) TransitionStatus(ctx context.Context, reference string, transition repository.Transition) error {
	args := m.Called(ctx, reference, transition)
	return args.Error(0)
}

func (m *TransactionRepository) UpdateFields(ctx context.Context, reference string, fields map[string]interface{}) error {
	args := m.Called(ctx, reference, fields)
	return args.Error(0)
}

func (m *TransactionRepository) DecrementRemainingTime(ctx context.Context, reference, day string) error {
	args := m.Called(ctx, reference, day)
	return args.Error(0)
}

func (m *TransactionRepository) ListActive(ctx context.Context, day string) ([]model.Transaction, error) {
	args := m.Called(ctx, day)
	transactions, _ := args.Get(0).([]model.Transaction)
	return transactions, args.Error(1)
}

func (m *TransactionRepository) ListPending(ctx context.Context) ([]model.Transaction, error) {
	args := m.Called(ctx)
	transactions, _ := args.Get(0).([]model.Transaction)
	return transactions, args.Error(1)
}

func (m *TransactionRepository) FindLatestActive(ctx context.Context, userID string, service model.Service) (*model.Transaction, error) {
	args := m.Called(ctx, userID, service)
	transaction, _ := args.Get(0).(*model.Transaction)
	return transaction, args.Error(1)
}

func (m *TransactionRepository) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Transaction, error) {
	args := m.Called(ctx, userID, limit, offset)
	transactions, _ := args.Get(0).([]model.Transaction)
	return transactions, args.Error(1)
}

func (m *TransactionRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *TransactionRepository) AggregateTotals(ctx context.Context) (model.TransactionTotals, error) {
	args := m.Called(ctx)
	totals, _ := args.Get(0).(model.TransactionTotals)
	return totals, args.Error(1)
}

func (m *TransactionRepository) Delete(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}
