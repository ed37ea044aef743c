package httpclient

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

var _ HTTPClient = (*httpClient)(nil)

type HTTPClient interface {
	Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error)
	Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (*http.Response, error)
	Do(req *http.Request) (*http.Response, error)
}

type httpClient struct {
	client *resty.Client
}

// NewHTTPClient returns a client whose responses are handed back unread; callers own resp.Body.
func NewHTTPClient(timeout time.Duration) HTTPClient {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0)

	return &httpClient{client: client}
}

func (c *httpClient) Get(ctx context.Context, url string, headers map[string]string) (*http.Response, error) {
	resp, err := c.request(ctx, headers).Get(url)
	if err != nil {
		return nil, err
	}

	return resp.RawResponse, nil
}

func (c *httpClient) Post(ctx context.Context, url string, body io.Reader, headers map[string]string) (*http.Response, error) {
	req := c.request(ctx, headers)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Post(url)
	if err != nil {
		return nil, err
	}

	return resp.RawResponse, nil
}

func (c *httpClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.GetClient().Do(req)
}

func (c *httpClient) request(ctx context.Context, headers map[string]string) *resty.Request {
	req := c.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true)

	if len(headers) > 0 {
		req.SetHeaders(headers)
	}

	return req
}
