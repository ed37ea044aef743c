package constants

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{ErrCodeInvalidRequestBody, http.StatusBadRequest},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeSubscriptionRequired, http.StatusPaymentRequired},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeTransactionNotFound, http.StatusNotFound},
		{ErrCodeUserNotFound, http.StatusNotFound},
		{ErrCodeInvalidTransition, http.StatusConflict},
		{ErrCodeValidationFailed, http.StatusUnprocessableEntity},
		{ErrCodeGatewayAuthFailed, http.StatusBadGateway},
		{ErrCodeGatewayRequestFailed, http.StatusBadGateway},
		{ErrCodePersistenceInconsistency, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}
}

func TestGetErrorMessage(t *testing.T) {
	assert.Equal(t, ErrMsgTransactionNotFound, GetErrorMessage(ErrCodeTransactionNotFound))
	assert.Equal(t, ErrMsgInternalError, GetErrorMessage("UNKNOWN"))
}

func TestIsKnownCode(t *testing.T) {
	assert.True(t, IsKnownCode(ErrCodeSubscriptionRequired))
	assert.False(t, IsKnownCode("UNKNOWN"))
}
