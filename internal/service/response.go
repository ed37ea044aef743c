package service

import (
	"time"

	"github.com/Behyna/subscription-engine/internal/model"
)

type InitiatePaymentResponse struct {
	Provider    ProviderResponse `json:"provider"`
	Transaction Transaction      `json:"transaction"`
}

type ProviderResponse struct {
	Reference string `json:"ref"`
	Status    string `json:"status"`
	Amount    int64  `json:"amount"`
	Provider  string `json:"provider"`
	Kind      string `json:"kind"`
	CreatedAt string `json:"created_at"`
}

type Transaction struct {
	Reference     string     `json:"reference"`
	Gateway       string     `json:"gateway"`
	UserID        string     `json:"user_id"`
	PayerNumber   string     `json:"payer_number"`
	Amount        int64      `json:"amount"`
	Method        string     `json:"method"`
	Duration      int        `json:"duration"`
	Service       string     `json:"service"`
	Status        string     `json:"status"`
	RemainingTime int        `json:"remaining_time"`
	FailureReason *string    `json:"failure_reason,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func NewTransaction(tx *model.Transaction) Transaction {
	return Transaction{
		Reference:     tx.Reference,
		Gateway:       tx.Gateway,
		UserID:        tx.UserID,
		PayerNumber:   tx.PayerNumber,
		Amount:        tx.Amount,
		Method:        string(tx.Method),
		Duration:      tx.Duration,
		Service:       string(tx.Service),
		Status:        string(tx.Status),
		RemainingTime: tx.RemainingTime,
		FailureReason: tx.FailureReason,
		CompletedAt:   tx.CompletedAt,
		CreatedAt:     tx.CreatedAt,
		UpdatedAt:     tx.UpdatedAt,
	}
}

type ListTransactionsResponse struct {
	Transactions []Transaction `json:"transactions"`
	Total        int64         `json:"total"`
}

type TotalsResponse struct {
	Completed int64 `json:"COMPLETED"`
	Pending   int64 `json:"PENDING"`
	Failed    int64 `json:"FAILED"`
}

type SubscriptionStatus struct {
	IsActive      bool       `json:"is_active"`
	RemainingDays int        `json:"remaining_days"`
	ExpiresAt     *time.Time `json:"expires_at"`
}

type DecayResult struct {
	Day         string `json:"day"`
	Candidates  int    `json:"candidates"`
	Decremented int    `json:"decremented"`
	Skipped     int    `json:"skipped"`
	Failed      int    `json:"failed"`
}
