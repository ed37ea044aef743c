package repository

import (
	"context"
	"errors"
	"time"

	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound  = errors.New("TRANSACTION_NOT_FOUND")
	ErrTransactionDuplicate = errors.New("TRANSACTION_DUPLICATE")
	ErrStatusConflict       = errors.New("TRANSACTION_STATUS_CONFLICT")
	ErrNoRowsAffected       = errors.New("NO_ROWS_AFFECTED")
)

// Transition describes the columns written when a pending transaction becomes terminal.
type Transition struct {
	Status        model.TransactionStatus
	RemainingTime int
	FailureReason *string
	CompletedAt   *time.Time
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *model.Transaction) error
	GetByReference(ctx context.Context, reference string) (*model.Transaction, error)
	TransitionStatus(ctx context.Context, reference string, transition Transition) error
	UpdateFields(ctx context.Context, reference string, fields map[string]interface{}) error
	DecrementRemainingTime(ctx context.Context, reference, day string) error
	ListActive(ctx context.Context, day string) ([]model.Transaction, error)
	ListPending(ctx context.Context) ([]model.Transaction, error)
	FindLatestActive(ctx context.Context, userID string, service model.Service) (*model.Transaction, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Transaction, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
	AggregateTotals(ctx context.Context) (model.TransactionTotals, error)
	Delete(ctx context.Context, reference string) error
}

type Transaction struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &Transaction{db: db}
}

func (t *Transaction) Create(ctx context.Context, transaction *model.Transaction) error {
	db := GetTx(ctx, t.db)
	err := db.Create(transaction).Error
	if err == nil {
		return nil
	}

	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return ErrTransactionDuplicate
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrTransactionDuplicate
	}

	return err
}

func (t *Transaction) GetByReference(ctx context.Context, reference string) (*model.Transaction, error) {
	var transaction model.Transaction

	err := GetTx(ctx, t.db).Where("reference = ?", reference).First(&transaction).Error
	if err == nil {
		return &transaction, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

// TransitionStatus moves a PENDING transaction to a terminal status. The status guard lives in the
// UPDATE itself so concurrent writers cannot both succeed.
func (t *Transaction) TransitionStatus(ctx context.Context, reference string, transition Transition) error {
	db := GetTx(ctx, t.db)
	result := db.Model(&model.Transaction{}).
		Where("reference = ? AND status = ?", reference, model.TransactionStatusPending).
		Updates(map[string]interface{}{
			"status":         string(transition.Status),
			"remaining_time": transition.RemainingTime,
			"failure_reason": transition.FailureReason,
			"completed_at":   transition.CompletedAt,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected > 0 {
		return nil
	}

	if _, err := t.GetByReference(ctx, reference); err != nil {
		return err
	}

	return ErrStatusConflict
}

func (t *Transaction) UpdateFields(ctx context.Context, reference string, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}

	db := GetTx(ctx, t.db)
	return db.Model(&model.Transaction{}).Where("reference = ?", reference).Updates(fields).Error
}

// DecrementRemainingTime subtracts one entitlement day and stamps the watermark for day.
// Returns ErrNoRowsAffected when the transaction is not active or was already decremented for day.
func (t *Transaction) DecrementRemainingTime(ctx context.Context, reference, day string) error {
	db := GetTx(ctx, t.db)
	result := db.Model(&model.Transaction{}).
		Where("reference = ? AND status = ? AND remaining_time > 0 AND last_decayed_on < ?",
			reference, model.TransactionStatusCompleted, day).
		Updates(map[string]interface{}{
			"remaining_time":  gorm.Expr("remaining_time - 1"),
			"last_decayed_on": day,
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrNoRowsAffected
	}

	return nil
}

func (t *Transaction) ListActive(ctx context.Context, day string) ([]model.Transaction, error) {
	var transactions []model.Transaction

	err := GetTx(ctx, t.db).
		Where("status = ? AND remaining_time > 0 AND last_decayed_on < ?", model.TransactionStatusCompleted, day).
		Order("id ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (t *Transaction) ListPending(ctx context.Context) ([]model.Transaction, error) {
	var transactions []model.Transaction

	err := GetTx(ctx, t.db).
		Where("status = ?", model.TransactionStatusPending).
		Order("created_at ASC").
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (t *Transaction) FindLatestActive(ctx context.Context, userID string, service model.Service) (*model.Transaction, error) {
	var transaction model.Transaction

	err := GetTx(ctx, t.db).
		Where("user_id = ? AND service = ? AND status = ? AND remaining_time > 0",
			userID, service, model.TransactionStatusCompleted).
		Order("created_at DESC").
		Order("id DESC").
		First(&transaction).Error
	if err == nil {
		return &transaction, nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTransactionNotFound
	}

	return nil, err
}

func (t *Transaction) ListByUser(ctx context.Context, userID string, limit, offset int) ([]model.Transaction, error) {
	var transactions []model.Transaction

	err := GetTx(ctx, t.db).Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&transactions).Error
	if err != nil {
		return nil, err
	}

	return transactions, nil
}

func (t *Transaction) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64

	err := GetTx(ctx, t.db).Model(&model.Transaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	if err != nil {
		return 0, err
	}

	return count, nil
}

func (t *Transaction) AggregateTotals(ctx context.Context) (model.TransactionTotals, error) {
	var rows []struct {
		Status model.TransactionStatus
		Total  int64
	}

	err := GetTx(ctx, t.db).Model(&model.Transaction{}).
		Select("status, COALESCE(SUM(amount), 0) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	totals := model.TransactionTotals{
		model.TransactionStatusCompleted: 0,
		model.TransactionStatusPending:   0,
		model.TransactionStatusFailed:    0,
	}
	for _, row := range rows {
		totals[row.Status] = row.Total
	}

	return totals, nil
}

func (t *Transaction) Delete(ctx context.Context, reference string) error {
	result := GetTx(ctx, t.db).Where("reference = ?", reference).Delete(&model.Transaction{})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}

	return nil
}
