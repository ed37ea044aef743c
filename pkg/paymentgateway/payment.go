package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/Behyna/subscription-engine/pkg/httpclient"
	"github.com/sony/gobreaker"
)

const (
	AuthorizeEndpoint = "/auth/agents/authorize"
	CashInEndpoint    = "/transactions/cashin"
	EventsEndpoint    = "/events/transactions"
)

const defaultName = "paypack"

// PaymentGateway talks to the mobile-money provider. Tokens are never cached:
// callers authorize before every CashIn or Events call.
type PaymentGateway interface {
	Name() string
	Authorize(ctx context.Context) (AccessToken, error)
	CashIn(ctx context.Context, token string, request CashInRequest) (CashInResponse, error)
	Events(ctx context.Context, token string, query EventsQuery) ([]Event, error)
}

type paymentGateway struct {
	client   httpclient.HTTPClient
	config   Config
	breaker  *gobreaker.CircuitBreaker
	observer StateObserver
}

func NewPaymentGateway(cfg Config, client httpclient.HTTPClient, opts ...Option) PaymentGateway {
	if cfg.Name == "" {
		cfg.Name = defaultName
	}

	p := &paymentGateway{config: cfg, client: client}
	for _, opt := range opts {
		opt(p)
	}
	p.breaker = newBreaker(cfg.Name, cfg.Breaker, p.observer)

	return p
}

func (p *paymentGateway) Name() string {
	return p.config.Name
}

func (p *paymentGateway) Authorize(ctx context.Context) (AccessToken, error) {
	request := AuthorizeRequest{ClientID: p.config.ClientID, ClientSecret: p.config.ClientSecret}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return AccessToken{}, fmt.Errorf("encoding error: %w", err)
	}

	var token AccessToken
	err := p.call(func() (*http.Response, error) {
		return p.client.Post(ctx, p.config.BaseURL+AuthorizeEndpoint, &buf, jsonHeaders(""))
	}, &token)
	if err != nil {
		return AccessToken{}, err
	}

	if token.Access == "" {
		return AccessToken{}, ErrUnauthorized
	}

	return token, nil
}

func (p *paymentGateway) CashIn(ctx context.Context, token string, request CashInRequest) (CashInResponse, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(request); err != nil {
		return CashInResponse{}, fmt.Errorf("encoding error: %w", err)
	}

	var response CashInResponse
	err := p.call(func() (*http.Response, error) {
		return p.client.Post(ctx, p.config.BaseURL+CashInEndpoint, &buf, jsonHeaders(token))
	}, &response)
	if err != nil {
		return CashInResponse{}, err
	}

	if response.Reference == "" {
		return CashInResponse{}, fmt.Errorf("decoding error: %w", errors.New("missing provider reference"))
	}

	return response, nil
}

func (p *paymentGateway) Events(ctx context.Context, token string, query EventsQuery) ([]Event, error) {
	params := url.Values{}
	params.Set("ref", query.Reference)
	if query.Phone != "" {
		params.Set("phone", query.Phone)
	}

	var response EventsResponse
	err := p.call(func() (*http.Response, error) {
		return p.client.Get(ctx, p.config.BaseURL+EventsEndpoint+"?"+params.Encode(), jsonHeaders(token))
	}, &response)
	if err != nil {
		return nil, err
	}

	return response.Transactions, nil
}

func (p *paymentGateway) call(send func() (*http.Response, error), out any) error {
	_, err := p.breaker.Execute(func() (interface{}, error) {
		resp, err := send()
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				return nil, ErrTimeout
			}

			return nil, err
		}

		defer resp.Body.Close()

		if resp.StatusCode != StatusOK && resp.StatusCode != StatusCreated {
			return nil, MapStatusToError(resp.StatusCode)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return nil, fmt.Errorf("decoding error: %w", err)
		}

		return nil, nil
	})

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrCircuitOpen
	}

	return err
}

func jsonHeaders(token string) map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
		"Accept":       "application/json",
	}

	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return headers
}
