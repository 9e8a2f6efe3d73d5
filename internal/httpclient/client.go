package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Config contains all configuration options for the HTTP client.
type Config struct {
	BaseURL          string
	Timeout          time.Duration
	Headers          map[string]string
	RetryCount       int
	RetryWaitTime    time.Duration
	MaxRetryWaitTime time.Duration
	EnableLogging    bool
}

func DefaultConfig() *Config {
	return &Config{
		Timeout:          30 * time.Second,
		Headers:          map[string]string{},
		RetryCount:       3,
		RetryWaitTime:    1 * time.Second,
		MaxRetryWaitTime: 30 * time.Second,
		EnableLogging:    false,
	}
}

// Client is a wrapper around the standard http.Client with retries and a
// middleware chain, used for JSON API calls.
type Client struct {
	httpClient  *http.Client
	config      *Config
	middlewares []Middleware
}

// NewClient creates a new HTTP client with the given configuration.
func NewClient(config *Config) *Client {
	if config == nil {
		return nil
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:      config,
		middlewares: []Middleware{},
	}
}

// WithMiddleware adds a middleware to the client.
func (c *Client) WithMiddleware(middleware Middleware) *Client {
	c.middlewares = append(c.middlewares, middleware)
	return c
}

// Post performs a POST request with a JSON body and decodes the JSON
// response into result.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("error marshaling body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(path), bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.do(ctx, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return NewAPIError(resp)
	}

	if result == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("error decoding response: %w", err)
	}

	return nil
}

// do sends a request through the middleware chain.
func (c *Client) do(ctx context.Context, req *http.Request) (*http.Response, error) {
	for key, value := range c.config.Headers {
		req.Header.Set(key, value)
	}

	handler := c.executeRequest

	// Apply middlewares in reverse order so they execute in the order
	// they were added.
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		handler = c.middlewares[i](handler)
	}

	return handler(ctx, req)
}

// executeRequest is the final handler that executes the actual HTTP
// request, retrying on transient failures.
func (c *Client) executeRequest(ctx context.Context, req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	var retryCount int

	for {
		resp, err = c.httpClient.Do(req)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("request failed: %w", err)
		}

		if !c.shouldRetry(resp, err) || retryCount >= c.config.RetryCount {
			break
		}

		// Close the response body to reuse the connection.
		if resp != nil {
			resp.Body.Close()
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(c.retryWaitTime(retryCount)):
		}

		// Clone the request and rewind the body for the next attempt.
		req = req.Clone(ctx)
		if req.GetBody != nil {
			body, bodyErr := req.GetBody()
			if bodyErr != nil {
				return nil, fmt.Errorf("error rewinding request body: %w", bodyErr)
			}
			req.Body = body
		}
		retryCount++
	}

	return resp, err
}

// shouldRetry determines if the request should be retried.
func (c *Client) shouldRetry(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	if resp.StatusCode >= 500 && resp.StatusCode < 600 {
		return true
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	return false
}

// retryWaitTime calculates the backoff before the next retry.
func (c *Client) retryWaitTime(retryCount int) time.Duration {
	waitTime := c.config.RetryWaitTime * time.Duration(1<<uint(retryCount))
	if waitTime > c.config.MaxRetryWaitTime {
		waitTime = c.config.MaxRetryWaitTime
	}
	return waitTime
}

func (c *Client) resolveURL(path string) string {
	if c.config.BaseURL == "" || strings.HasPrefix(path, "http") {
		return path
	}
	baseURL := strings.TrimSuffix(c.config.BaseURL, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}
