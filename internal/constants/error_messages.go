package constants

import "net/http"

const (
	ErrCodeGatewayAuthFailed        = "GATEWAY_AUTH_FAILED"
	ErrCodeGatewayRequestFailed     = "GATEWAY_REQUEST_FAILED"
	ErrCodeInvalidTransition        = "INVALID_TRANSITION"
	ErrCodeTransactionNotFound      = "TRANSACTION_NOT_FOUND"
	ErrCodePersistenceInconsistency = "PERSISTENCE_INCONSISTENCY"
	ErrCodeUserNotFound             = "USER_NOT_FOUND"
	ErrCodeValidationFailed         = "VALIDATION_FAILED"
	ErrCodeInvalidRequestBody       = "INVALID_REQUEST_BODY"
	ErrCodeUnauthorized             = "UNAUTHORIZED"
	ErrCodeForbidden                = "FORBIDDEN"
	ErrCodeSubscriptionRequired     = "SUBSCRIPTION_REQUIRED"
	ErrCodeInternalError            = "INTERNAL_ERROR"
)

const (
	ErrMsgGatewayAuthFailed        = "payment gateway rejected the credentials"
	ErrMsgGatewayRequestFailed     = "payment gateway request failed"
	ErrMsgInvalidTransition        = "transaction is already in a terminal state"
	ErrMsgTransactionNotFound      = "transaction not found"
	ErrMsgPersistenceInconsistency = "payment was requested but could not be recorded"
	ErrMsgUserNotFound             = "user not found"
	ErrMsgValidationFailed         = "validation failed"
	ErrMsgInvalidRequestBody       = "failed to parse request body"
	ErrMsgUnauthorized             = "missing or invalid access token"
	ErrMsgForbidden                = "not allowed to access this resource"
	ErrMsgSubscriptionRequired     = "an active subscription is required"
	ErrMsgInternalError            = "Internal server error"
)

const MessageErrorFormat = "The '%s' format is invalid"

var errorMessages = map[string]string{
	ErrCodeGatewayAuthFailed:        ErrMsgGatewayAuthFailed,
	ErrCodeGatewayRequestFailed:     ErrMsgGatewayRequestFailed,
	ErrCodeInvalidTransition:        ErrMsgInvalidTransition,
	ErrCodeTransactionNotFound:      ErrMsgTransactionNotFound,
	ErrCodePersistenceInconsistency: ErrMsgPersistenceInconsistency,
	ErrCodeUserNotFound:             ErrMsgUserNotFound,
	ErrCodeValidationFailed:         ErrMsgValidationFailed,
	ErrCodeInvalidRequestBody:       ErrMsgInvalidRequestBody,
	ErrCodeUnauthorized:             ErrMsgUnauthorized,
	ErrCodeForbidden:                ErrMsgForbidden,
	ErrCodeSubscriptionRequired:     ErrMsgSubscriptionRequired,
	ErrCodeInternalError:            ErrMsgInternalError,
}

func GetErrorMessage(code string) string {
	if msg, exists := errorMessages[code]; exists {
		return msg
	}
	return ErrMsgInternalError
}

func IsKnownCode(code string) bool {
	_, exists := errorMessages[code]
	return exists
}

func GetHTTPStatus(code string) int {
	switch code {
	case ErrCodeInvalidRequestBody:
		return http.StatusBadRequest
	case ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case ErrCodeSubscriptionRequired:
		return http.StatusPaymentRequired
	case ErrCodeForbidden:
		return http.StatusForbidden
	case ErrCodeTransactionNotFound, ErrCodeUserNotFound:
		return http.StatusNotFound
	case ErrCodeInvalidTransition:
		return http.StatusConflict
	case ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case ErrCodeGatewayAuthFailed, ErrCodeGatewayRequestFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
