package mocks

import (
	"context"
	"io"
	"net/http"

	"github.com/Behyna/subscription-engine/pkg/httpclient"
	"github.com/stretchr/testify/mock"
)

var _ httpclient.HTTPClient = (*HTTPClient)(nil)

// HTTPClient stands in for the resty-backed client. A nil response may be returned alongside a
// transport error, the same as the real client.
type HTTPClient struct {
	mock.Mock
}

func (m *HTTPClient) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	args := m.Called(ctx, url, headers)
	return response(args), args.Error(1)
}

func (m *HTTPClient) Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	args := m.Called(ctx, url, body, headers)
	return response(args), args.Error(1)
}

func (m *HTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	return response(args), args.Error(1)
}

func response(args mock.Arguments) *http.Response {
	resp, _ := args.Get(0).(*http.Response)
	return resp
}
