package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type Publisher struct {
	mock.Mock
}

func (_m *Publisher) Publish(ctx context.Context, exchange string, routingKey string, body []byte) error {
	ret := _m.Called(ctx, exchange, routingKey, body)

	if rf, ok := ret.Get(0).(func(context.Context, string, string, []byte) error); ok {
		return rf(ctx, exchange, routingKey, body)
	}
	return ret.Error(0)
}

func (_m *Publisher) Close() error {
	ret := _m.Called()
	return ret.Error(0)
}
