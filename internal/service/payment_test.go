package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Behyna/subscription-engine/internal/constants"
	"github.com/Behyna/subscription-engine/internal/mocks"
	"github.com/Behyna/subscription-engine/internal/model"
	"github.com/Behyna/subscription-engine/internal/repository"
	"github.com/Behyna/subscription-engine/internal/service"
	"github.com/Behyna/subscription-engine/pkg/paymentgateway"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type paymentFixture struct {
	gateway      *mocks.PaymentGateway
	transactions *mocks.TransactionService
	users        *mocks.UserRepository
	pollers      *mocks.PollerRegistry
	svc          service.PaymentService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		gateway:      &mocks.PaymentGateway{},
		transactions: &mocks.TransactionService{},
		users:        &mocks.UserRepository{},
		pollers:      &mocks.PollerRegistry{},
	}
	f.svc = service.NewPaymentService(f.gateway, f.transactions, f.users, f.pollers, newMetrics(), zap.NewNop())
	return f
}

func TestPayment_Initiate(t *testing.T) {
	ctx := context.Background()
	cmd := service.InitiatePaymentCommand{
		UserID:      "U1",
		Amount:      10000,
		PayerNumber: "0788000000",
		Duration:    1,
		Service:     model.ServiceTINManagement,
	}
	token := paymentgateway.AccessToken{Access: "token"}
	cashInRequest := paymentgateway.CashInRequest{Amount: 10000, Number: "0788000000"}

	t.Run("Successful initiation creates a pending transaction and starts polling", func(t *testing.T) {
		f := newPaymentFixture()

		f.users.On("GetByID", ctx, "U1").Return(&model.User{ID: "U1", Role: model.RoleUser}, nil)
		f.gateway.On("Authorize", ctx).Return(token, nil).Once()
		f.gateway.On("CashIn", ctx, "token", cashInRequest).Return(paymentgateway.CashInResponse{
			Reference: "R1",
			Status:    "pending",
			Amount:    10000,
			Provider:  "mtn",
			Kind:      "CASHIN",
		}, nil).Once()
		f.gateway.On("Name").Return("paypack")
		f.transactions.On("Create", ctx, mock.MatchedBy(func(tx *model.Transaction) bool {
			return tx.Reference == "R1" && tx.Status == model.TransactionStatusPending &&
				tx.RemainingTime == 0 && tx.Method == model.PaymentMethodMTN &&
				tx.Gateway == "paypack" && tx.Duration == 1
		})).Return(nil).Once()
		f.pollers.On("Register", mock.MatchedBy(func(tx model.Transaction) bool {
			return tx.Reference == "R1" && tx.PayerNumber == "0788000000"
		})).Return(true).Once()

		resp, err := f.svc.Initiate(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, "R1", resp.Provider.Reference)
		assert.Equal(t, "mtn", resp.Provider.Provider)
		assert.Equal(t, "R1", resp.Transaction.Reference)
		assert.Equal(t, "MTN", resp.Transaction.Method)
		assert.Equal(t, "PENDING", resp.Transaction.Status)
		f.gateway.AssertExpectations(t)
		f.transactions.AssertExpectations(t)
		f.pollers.AssertExpectations(t)
	})

	t.Run("Missing provider name falls back to unknown method", func(t *testing.T) {
		f := newPaymentFixture()

		f.users.On("GetByID", ctx, "U1").Return(&model.User{ID: "U1"}, nil)
		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("CashIn", ctx, "token", cashInRequest).Return(paymentgateway.CashInResponse{Reference: "R2"}, nil)
		f.gateway.On("Name").Return("paypack")
		f.transactions.On("Create", ctx, mock.MatchedBy(func(tx *model.Transaction) bool {
			return tx.Method == model.PaymentMethodUnknown
		})).Return(nil).Once()
		f.pollers.On("Register", mock.Anything).Return(true)

		resp, err := f.svc.Initiate(ctx, cmd)

		require.NoError(t, err)
		assert.Equal(t, "UNKNOWN", resp.Transaction.Method)
	})

	t.Run("Rejected credentials create nothing", func(t *testing.T) {
		f := newPaymentFixture()

		f.users.On("GetByID", ctx, "U1").Return(&model.User{ID: "U1"}, nil)
		f.gateway.On("Authorize", ctx).Return(paymentgateway.AccessToken{}, paymentgateway.ErrUnauthorized)

		resp, err := f.svc.Initiate(ctx, cmd)

		assert.Nil(t, resp)
		assert.ErrorIs(t, err, paymentgateway.ErrUnauthorized)
		assertServiceError(t, err, constants.ErrCodeGatewayAuthFailed)
		f.gateway.AssertNotCalled(t, "CashIn", mock.Anything, mock.Anything, mock.Anything)
		f.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Cash-in failure creates nothing", func(t *testing.T) {
		f := newPaymentFixture()

		f.users.On("GetByID", ctx, "U1").Return(&model.User{ID: "U1"}, nil)
		f.gateway.On("Authorize", ctx).Return(token, nil)
		f.gateway.On("CashIn", ctx, "token", cashInRequest).
			Return(paymentgateway.CashInResponse{}, paymentgateway.ErrServerError)

		_, err := f.svc.Initiate(ctx, cmd)

		assertServiceError(t, err, constants.ErrCodeGatewayRequestFailed)
		f.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.pollers.AssertNotCalled(t, "Register", mock.Anything)
	})

	t.Run("Persistence failure after cash-in is reported as inconsistency", func(t *testing.T) {
		gateway := &mocks.PaymentGateway{}
		transactions := &mocks.TransactionService{}
		users := &mocks.UserRepository{}
		pollers := &mocks.PollerRegistry{}
		m := newMetrics()
		svc := service.NewPaymentService(gateway, transactions, users, pollers, m, zap.NewNop())

		users.On("GetByID", ctx, "U1").Return(&model.User{ID: "U1"}, nil)
		gateway.On("Authorize", ctx).Return(token, nil)
		gateway.On("CashIn", ctx, "token", cashInRequest).
			Return(paymentgateway.CashInResponse{Reference: "R3", Provider: "airtel"}, nil)
		gateway.On("Name").Return("paypack")
		transactions.On("Create", ctx, mock.Anything).Return(errors.New("connection reset"))

		_, err := svc.Initiate(ctx, cmd)

		assert.ErrorIs(t, err, service.ErrPersistenceInconsistency)
		assertServiceError(t, err, constants.ErrCodePersistenceInconsistency)
		assert.Contains(t, err.Error(), "R3")
		assert.Equal(t, 1.0, testutil.ToFloat64(m.PersistenceInconsistencies))
		pollers.AssertNotCalled(t, "Register", mock.Anything)
	})

	t.Run("Unknown user", func(t *testing.T) {
		f := newPaymentFixture()
		f.users.On("GetByID", ctx, "U1").Return(nil, repository.ErrUserNotFound)

		_, err := f.svc.Initiate(ctx, cmd)

		assertServiceError(t, err, constants.ErrCodeUserNotFound)
		f.gateway.AssertNotCalled(t, "Authorize", mock.Anything)
	})

	t.Run("Invalid input never reaches the gateway", func(t *testing.T) {
		tests := []struct {
			name string
			cmd  service.InitiatePaymentCommand
		}{
			{"zero amount", service.InitiatePaymentCommand{UserID: "U1", Amount: 0, Service: model.ServiceBooks}},
			{"negative duration", service.InitiatePaymentCommand{UserID: "U1", Amount: 1, Duration: -1, Service: model.ServiceBooks}},
			{"unknown service", service.InitiatePaymentCommand{UserID: "U1", Amount: 1, Service: "MUSIC"}},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				f := newPaymentFixture()

				_, err := f.svc.Initiate(ctx, tt.cmd)

				assertServiceError(t, err, constants.ErrCodeValidationFailed)
				f.users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
				f.gateway.AssertNotCalled(t, "Authorize", mock.Anything)
			})
		}
	})
}
