package paymentgateway

import "errors"

const (
	StatusOK                  = 200
	StatusCreated             = 201
	StatusBadRequest          = 400
	StatusUnauthorized        = 401
	StatusForbidden           = 403
	StatusUnprocessableEntity = 422
)

const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeServerError  = "SERVER_ERROR"
	ErrCodeCircuitOpen  = "CIRCUIT_OPEN"
)

var (
	ErrUnauthorized = errors.New(ErrCodeUnauthorized)
	ErrBadRequest   = errors.New(ErrCodeBadRequest)
	ErrTimeout      = errors.New(ErrCodeTimeout)
	ErrServerError  = errors.New(ErrCodeServerError)
	ErrCircuitOpen  = errors.New(ErrCodeCircuitOpen)
)

var statusErrorMap = map[int]error{
	StatusBadRequest:          ErrBadRequest,
	StatusUnprocessableEntity: ErrBadRequest,
	StatusUnauthorized:        ErrUnauthorized,
	StatusForbidden:           ErrUnauthorized,
}

func MapStatusToError(statusCode int) error {
	if err, exists := statusErrorMap[statusCode]; exists {
		return err
	}

	return ErrServerError
}

// IsAuthError reports whether the provider rejected our credentials or token.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}
