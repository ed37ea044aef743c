package service

import (
	"errors"

	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/pkg/paymentgateway"
)

var (
	ErrTransactionNotFound      = errors.New("TRANSACTION_NOT_FOUND")
	ErrInvalidTransition        = errors.New("INVALID_TRANSITION")
	ErrPersistenceInconsistency = errors.New("PERSISTENCE_INCONSISTENCY")
	ErrUserNotFound             = errors.New("USER_NOT_FOUND")
	ErrInvalidAmount            = errors.New("amount must be positive")
	ErrInvalidDuration          = errors.New("duration must not be negative")
	ErrInvalidService           = errors.New("unknown service")
	ErrInvalidRemainingTime     = errors.New("remaining time must not be negative")
)

type Error struct {
	Code  string
	Cause error
}

func NewServiceError(code string, cause error) error {
	return Error{Code: code, Cause: cause}
}

func (e Error) Error() string {
	return e.Cause.Error()
}

func (e Error) Unwrap() error {
	return e.Cause
}

// gatewayError classifies a payment gateway failure as an auth or a request failure.
func gatewayError(err error) error {
	if paymentgateway.IsAuthError(err) {
		return NewServiceError(constants.ErrCodeGatewayAuthFailed, err)
	}
	return NewServiceError(constants.ErrCodeGatewayRequestFailed, err)
}

func validationError(err error) error {
	return NewServiceError(constants.ErrCodeValidationFailed, err)
}
