package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// Client is a thin HTTP client that forwards validated requests to the
// core server, preserving identity and tracing headers.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ProxiedResponse carries the server reply back to the gateway handler.
type ProxiedResponse struct {
	Status      int
	ContentType string
	Body        []byte
}

var forwardedHeaders = []string{
	"X-Sharer-User-Id",
	"X-Request-Id",
	"Content-Type",
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Forward sends the request to the core server and returns its reply as-is.
func (c *Client) Forward(ctx context.Context, method, path string, query url.Values, body []byte, src http.Header) (*ProxiedResponse, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	for _, name := range forwardedHeaders {
		if v := src.Get(name); v != "" {
			req.Header.Set(name, v)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("proxy request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read proxied response: %w", err)
	}

	return &ProxiedResponse{
		Status:      resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}
