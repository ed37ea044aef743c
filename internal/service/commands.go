package service

import "github.com/Behyna/subscription-engine/internal/model"

type InitiatePaymentCommand struct {
	UserID      string
	Amount      int64
	PayerNumber string
	Duration    int
	Service     model.Service
}

type UpdateStatusCommand struct {
	Reference     string
	Status        model.TransactionStatus
	RemainingTime *int
	Reason        *string
}

// UpdateFieldsCommand carries an administrative correction. Nil fields are left untouched.
type UpdateFieldsCommand struct {
	Reference     string
	Amount        *int64
	PayerNumber   *string
	Method        *model.PaymentMethod
	Duration      *int
	Service       *model.Service
	RemainingTime *int
}

type ListTransactionsQuery struct {
	UserID string
	Limit  int
	Offset int
}
