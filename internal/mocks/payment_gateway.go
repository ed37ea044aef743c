package mocks

import (
	"context"

	"github.com/Behyna/subscription-engine/pkg/paymentgateway"
	"github.com/stretchr/testify/mock"
)

type PaymentGateway struct {
	mock.Mock
}

func (m *PaymentGateway) Name() string {
	args := m.Called()
	return args.String(0)
}

func (m *PaymentGateway) Authorize(ctx context.Context) (paymentgateway.AccessToken, error) {
	args := m.Called(ctx)
	return args.Get(0).(paymentgateway.AccessToken), args.Error(1)
}

func (m *PaymentGateway) CashIn(ctx context.Context, token string, request paymentgateway.CashInRequest) (paymentgateway.CashInResponse, error) {
	args := m.Called(ctx, token, request)
	return args.Get(0).(paymentgateway.CashInResponse), args.Error(1)
}

func (m *PaymentGateway) Events(ctx context.Context, token string, query paymentgateway.EventsQuery) ([]paymentgateway.Event, error) {
	args := m.Called(ctx, token, query)
	events, _ := args.Get(0).([]paymentgateway.Event)
	return events, args.Error(1)
}
