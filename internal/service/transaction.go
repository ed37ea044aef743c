package service

import (
	"context"
	"errors"
	"time"

	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/metrics"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/repository"
	"go.uber.org/zap"
)

type TransactionService interface {
	Create(ctx context.Context, transaction *model.Transaction) error
	Get(ctx context.Context, reference string) (*model.Transaction, error)
	UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*model.Transaction, error)
	UpdateFields(ctx context.Context, cmd UpdateFieldsCommand) (*model.Transaction, error)
	DecrementRemainingTime(ctx context.Context, reference, day string) error
	ListActive(ctx context.Context, day string) ([]model.Transaction, error)
	ListPending(ctx context.Context) ([]model.Transaction, error)
	ListByUser(ctx context.Context, query ListTransactionsQuery) (ListTransactionsResponse, error)
	AggregateTotals(ctx context.Context) (TotalsResponse, error)
	Delete(ctx context.Context, reference string) error
}

type transactionService struct {
	repo      repository.TransactionRepository
	txManager repository.TxManager
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewTransactionService(repo repository.TransactionRepository, txManager repository.TxManager,
	metrics *metrics.Metrics, logger *zap.Logger) TransactionService {
	return &transactionService{repo: repo, txManager: txManager, metrics: metrics, logger: logger}
}

func (s *transactionService) Create(ctx context.Context, transaction *model.Transaction) error {
	if transaction.Amount <= 0 {
		return validationError(ErrInvalidAmount)
	}
	if transaction.Duration < 0 {
		return validationError(ErrInvalidDuration)
	}
	if !transaction.Service.Valid() {
		return validationError(ErrInvalidService)
	}

	if err := s.repo.Create(ctx, transaction); err != nil {
		s.logger.Error("Failed to create transaction",
			zap.Error(err),
			zap.String("reference", transaction.Reference))
		return err
	}

	s.logger.Info("Transaction created",
		zap.String("reference", transaction.Reference),
		zap.String("userID", transaction.UserID),
		zap.String("service", string(transaction.Service)))

	return nil
}

func (s *transactionService) Get(ctx context.Context, reference string) (*model.Transaction, error) {
	transaction, err := s.repo.GetByReference(ctx, reference)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}
	return transaction, nil
}

// UpdateStatus moves a PENDING transaction to COMPLETED or FAILED. Completing a transaction grants
// duration*30 entitlement days unless an explicit remaining time is supplied.
func (s *transactionService) UpdateStatus(ctx context.Context, cmd UpdateStatusCommand) (*model.Transaction, error) {
	if !cmd.Status.Valid() {
		return nil, validationError(errors.New("unknown status " + string(cmd.Status)))
	}
	if cmd.RemainingTime != nil && *cmd.RemainingTime < 0 {
		return nil, validationError(ErrInvalidRemainingTime)
	}

	current, err := s.repo.GetByReference(ctx, cmd.Reference)
	if err != nil {
		return nil, s.mapRepositoryError(err)
	}

	if current.Status.IsTerminal() || !cmd.Status.IsTerminal() {
		s.logger.Warn("Rejected status transition",
			zap.String("reference", cmd.Reference),
			zap.String("from", string(current.Status)),
			zap.String("to", string(cmd.Status)))
		return nil, NewServiceError(constants.ErrCodeInvalidTransition, ErrInvalidTransition)
	}

	transition := repository.Transition{
		Status:        cmd.Status,
		RemainingTime: current.RemainingTime,
		FailureReason: cmd.Reason,
	}

	if cmd.Status == model.TransactionStatusCompleted {
		now := time.Now().UTC()
		transition.CompletedAt = &now
		transition.FailureReason = nil
		transition.RemainingTime = model.EntitlementDays(current.Duration)
		if cmd.RemainingTime != nil {
			transition.RemainingTime = *cmd.RemainingTime
		}
	}

	if err := s.repo.TransitionStatus(ctx, cmd.Reference, transition); err != nil {
		return nil, s.mapRepositoryError(err)
	}

	s.metrics.RecordTransactionFinalized(string(cmd.Status))
	s.logger.Info("Transaction status updated",
		zap.String("reference", cmd.Reference),
		zap.String("status", string(cmd.Status)),
		zap.Int("remainingTime", transition.RemainingTime))

	// Apply the committed transition to the row read before it.
	updated := *current
	updated.Status = transition.Status
	updated.RemainingTime = transition.RemainingTime
	updated.FailureReason = transition.FailureReason
	updated.CompletedAt = transition.CompletedAt
	updated.UpdatedAt = time.Now().UTC()
	return &updated, nil
}

// UpdateFields applies an administrative correction. Changing the duration recomputes the remaining
// time as duration*30 unless a remaining time is given explicitly.
func (s *transactionService) UpdateFields(ctx context.Context, cmd UpdateFieldsCommand) (*model.Transaction, error) {
	fields := map[string]interface{}{}

	if cmd.Amount != nil {
		if *cmd.Amount <= 0 {
			return nil, validationError(ErrInvalidAmount)
		}
		fields["amount"] = *cmd.Amount
	}
	if cmd.PayerNumber != nil {
		fields["payer_number"] = *cmd.PayerNumber
	}
	if cmd.Method != nil {
		fields["method"] = string(*cmd.Method)
	}
	if cmd.Service != nil {
		if !cmd.Service.Valid() {
			return nil, validationError(ErrInvalidService)
		}
		fields["service"] = string(*cmd.Service)
	}
	if cmd.Duration != nil && *cmd.Duration < 0 {
		return nil, validationError(ErrInvalidDuration)
	}
	if cmd.RemainingTime != nil {
		if *cmd.RemainingTime < 0 {
			return nil, validationError(ErrInvalidRemainingTime)
		}
		fields["remaining_time"] = *cmd.RemainingTime
	}

	err := s.txManager.WithTx(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByReference(ctx, cmd.Reference)
		if err != nil {
			return err
		}

		if cmd.Duration != nil {
			fields["duration"] = *cmd.Duration
			if *cmd.Duration != current.Duration && cmd.RemainingTime == nil {
				fields["remaining_time"] = model.EntitlementDays(*cmd.Duration)
			}
		}

		return s.repo.UpdateFields(ctx, cmd.Reference, fields)
	})
	if err != nil {
		s.logger.Error("Failed to update transaction fields",
			zap.Error(err),
			zap.String("reference", cmd.Reference))
		return nil, s.mapRepositoryError(err)
	}

	s.logger.Info("Transaction fields updated",
		zap.String("reference", cmd.Reference),
		zap.Int("fields", len(fields)))

	return s.Get(ctx, cmd.Reference)
}

func (s *transactionService) DecrementRemainingTime(ctx context.Context, reference, day string) error {
	return s.repo.DecrementRemainingTime(ctx, reference, day)
}

func (s *transactionService) ListActive(ctx context.Context, day string) ([]model.Transaction, error) {
	return s.repo.ListActive(ctx, day)
}

func (s *transactionService) ListPending(ctx context.Context) ([]model.Transaction, error) {
	return s.repo.ListPending(ctx)
}

func (s *transactionService) ListByUser(ctx context.Context, query ListTransactionsQuery) (ListTransactionsResponse, error) {
	transactions, err := s.repo.ListByUser(ctx, query.UserID, query.Limit, query.Offset)
	if err != nil {
		s.logger.Error("Failed to list transactions", zap.Error(err), zap.String("userID", query.UserID))
		return ListTransactionsResponse{}, err
	}

	total, err := s.repo.CountByUser(ctx, query.UserID)
	if err != nil {
		s.logger.Error("Failed to count transactions", zap.Error(err), zap.String("userID", query.UserID))
		return ListTransactionsResponse{}, err
	}

	response := ListTransactionsResponse{Transactions: make([]Transaction, 0, len(transactions)), Total: total}
	for i := range transactions {
		response.Transactions = append(response.Transactions, NewTransaction(&transactions[i]))
	}

	return response, nil
}

func (s *transactionService) AggregateTotals(ctx context.Context) (TotalsResponse, error) {
	totals, err := s.repo.AggregateTotals(ctx)
	if err != nil {
		s.logger.Error("Failed to aggregate totals", zap.Error(err))
		return TotalsResponse{}, err
	}

	return TotalsResponse{
		Completed: totals[model.TransactionStatusCompleted],
		Pending:   totals[model.TransactionStatusPending],
		Failed:    totals[model.TransactionStatusFailed],
	}, nil
}

func (s *transactionService) Delete(ctx context.Context, reference string) error {
	if err := s.repo.Delete(ctx, reference); err != nil {
		return s.mapRepositoryError(err)
	}

	s.logger.Info("Transaction deleted", zap.String("reference", reference))
	return nil
}

func (s *transactionService) mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, repository.ErrTransactionNotFound):
		return NewServiceError(constants.ErrCodeTransactionNotFound, ErrTransactionNotFound)
	case errors.Is(err, repository.ErrStatusConflict):
		return NewServiceError(constants.ErrCodeInvalidTransition, ErrInvalidTransition)
	default:
		return err
	}
}
