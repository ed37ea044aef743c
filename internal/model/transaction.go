package model

import (
	"strings"
	"time"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "PENDING"
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

func (s TransactionStatus) Valid() bool {
	return s == TransactionStatusPending || s.IsTerminal()
}

type PaymentMethod string

const (
	PaymentMethodMTN     PaymentMethod = "MTN"
	PaymentMethodAirtel  PaymentMethod = "AIRTEL"
	PaymentMethodUnknown PaymentMethod = "UNKNOWN"
)

// MethodFromProvider maps the provider name returned by the gateway to a payment method.
func MethodFromProvider(provider string) PaymentMethod {
	switch PaymentMethod(strings.ToUpper(strings.TrimSpace(provider))) {
	case PaymentMethodMTN:
		return PaymentMethodMTN
	case PaymentMethodAirtel:
		return PaymentMethodAirtel
	default:
		return PaymentMethodUnknown
	}
}

type Service string

const (
	ServiceTINManagement  Service = "TIN_MANAGEMENT"
	ServiceGoogleLocation Service = "GOOGLE_LOCATION"
	ServiceBooks          Service = "BOOKS"
)

var services = map[Service]struct{}{
	ServiceTINManagement:  {},
	ServiceGoogleLocation: {},
	ServiceBooks:          {},
}

func (s Service) Valid() bool {
	_, ok := services[s]
	return ok
}

const (
	DaysPerMonth = 30
	DayLayout    = "2006-01-02"

	FailureReasonGateway = "GATEWAY_FAILED"
	FailureReasonExpired = "EXPIRED"
)

// EntitlementDays converts purchased months into entitlement days.
func EntitlementDays(duration int) int {
	if duration <= 0 {
		return 0
	}
	return duration * DaysPerMonth
}

type Transaction struct {
	ID            int64             `gorm:"primaryKey;autoIncrement;column:id;<-:create"`
	Reference     string            `gorm:"column:reference;type:varchar(64);not null;index:idx_gateway_reference,unique"`
	Gateway       string            `gorm:"column:gateway;type:varchar(32);not null;index:idx_gateway_reference,unique"`
	UserID        string            `gorm:"column:user_id;type:varchar(64);not null;index"`
	PayerNumber   string            `gorm:"column:payer_number;type:varchar(20);not null"`
	Amount        int64             `gorm:"column:amount;not null"`
	Method        PaymentMethod     `gorm:"column:method;type:varchar(16);not null"`
	Duration      int               `gorm:"column:duration;not null;default:0"`
	Service       Service           `gorm:"column:service;type:varchar(32);not null"`
	Status        TransactionStatus `gorm:"column:status;type:varchar(16);not null;index"`
	RemainingTime int               `gorm:"column:remaining_time;not null;default:0"`
	LastDecayedOn string            `gorm:"column:last_decayed_on;type:varchar(10);not null"`
	FailureReason *string           `gorm:"column:failure_reason;type:varchar(64)"`
	CompletedAt   *time.Time        `gorm:"column:completed_at"`
	CreatedAt     time.Time         `gorm:"column:created_at"`
	UpdatedAt     time.Time         `gorm:"column:updated_at"`
}

func (Transaction) TableName() string {
	return "transactions"
}

type TransactionTotals map[TransactionStatus]int64
