package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Behyna/subscription-engine/internal/api/contract"
	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestErrorHandler(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{
			name:   "service error",
			err:    service.NewServiceError(constants.ErrCodeSubscriptionRequired, errors.New("inactive")),
			status: http.StatusPaymentRequired,
			code:   constants.ErrCodeSubscriptionRequired,
		},
		{
			name:   "wrapped service error",
			err:    errors.Join(errors.New("outer"), service.NewServiceError(constants.ErrCodeTransactionNotFound, service.ErrTransactionNotFound)),
			status: http.StatusNotFound,
			code:   constants.ErrCodeTransactionNotFound,
		},
		{
			name:   "unknown service code",
			err:    service.NewServiceError("SOMETHING_NEW", errors.New("boom")),
			status: http.StatusInternalServerError,
			code:   constants.ErrCodeInternalError,
		},
		{
			name:   "fiber error",
			err:    fiber.NewError(http.StatusMethodNotAllowed, "Method Not Allowed"),
			status: http.StatusMethodNotAllowed,
			code:   constants.ErrCodeInternalError,
		},
		{
			name:   "plain error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			code:   constants.ErrCodeInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
			app.Get("/", func(c *fiber.Ctx) error {
				c.Locals(contract.TrackIDKey, "track-1")
				return tt.err
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)

			var body contract.Response
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, "track-1", body.TrackID)
			assert.False(t, body.Successful)
		})
	}
}
