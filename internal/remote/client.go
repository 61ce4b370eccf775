package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxResponseBytes caps how much of a response body is read
const maxResponseBytes = 1 << 20

// ClientOption represents a function that can modify the HTTP client
type ClientOption func(*HTTPClient)

// HTTPError represents a non-2xx response
type HTTPError struct {
	StatusCode int
	Status     string
	URL        string
	Method     string
	Body       string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%s %s failed with status %d %s: %s", e.Method, e.URL, e.StatusCode, e.Status, e.Body)
}

// RetryConfig configures the retry behavior
type RetryConfig struct {
	MaxRetries           int
	InitialInterval      time.Duration
	MaxInterval          time.Duration
	Multiplier           float64
	RetryableStatusCodes []int
}

// DefaultRetryConfig provides the stock retry policy
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:           2,
		InitialInterval:      100 * time.Millisecond,
		MaxInterval:          2 * time.Second,
		Multiplier:           2.0,
		RetryableStatusCodes: []int{408, 429, 500, 502, 503, 504},
	}
}

// HTTPClient sends JSON requests with retries and structured logging
type HTTPClient struct {
	httpClient     *http.Client
	defaultHeaders map[string]string
	retryConfig    *RetryConfig
	logger         *zap.Logger
}

// NewHTTPClient creates a new HTTPClient with the given options
func NewHTTPClient(options ...ClientOption) *HTTPClient {
	client := &HTTPClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		defaultHeaders: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		retryConfig: DefaultRetryConfig(),
		logger:      zap.NewNop(),
	}
	for _, option := range options {
		option(client)
	}
	return client
}

// WithTimeout sets the per-attempt timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *HTTPClient) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRetryConfig sets the retry configuration; nil disables retries
func WithRetryConfig(config *RetryConfig) ClientOption {
	return func(c *HTTPClient) {
		c.retryConfig = config
	}
}

// WithDefaultHeader adds a header to all requests
func WithDefaultHeader(key, value string) ClientOption {
	return func(c *HTTPClient) {
		c.defaultHeaders[key] = value
	}
}

// WithBearerToken adds bearer token authentication to all requests
func WithBearerToken(token string) ClientOption {
	return func(c *HTTPClient) {
		if token != "" {
			c.defaultHeaders["Authorization"] = "Bearer " + token
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) ClientOption {
	return func(c *HTTPClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) ClientOption {
	return func(c *HTTPClient) {
		c.httpClient.Transport = rt
	}
}

// Get performs an HTTP GET request and returns the response body
func (c *HTTPClient) Get(ctx context.Context, rawURL string) ([]byte, error) {
	return c.DoRequest(ctx, http.MethodGet, rawURL, nil)
}

// Post performs an HTTP POST request with a JSON body and returns the response body
func (c *HTTPClient) Post(ctx context.Context, rawURL string, body interface{}) ([]byte, error) {
	return c.DoRequest(ctx, http.MethodPost, rawURL, body)
}

// DoRequest performs a request, retrying transport failures and retryable status
// codes until the retry budget or ctx runs out. Every attempt carries the same
// X-Request-ID. A non-2xx final response is returned as *HTTPError.
func (c *HTTPClient) DoRequest(ctx context.Context, method, rawURL string, body interface{}) ([]byte, error) {
	start := time.Now()

	if _, err := url.ParseRequestURI(rawURL); err != nil {
		return nil, fmt.Errorf("invalid request url %q: %w", rawURL, err)
	}

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
	}

	requestID := uuid.NewString()
	attempts := 0
	var result []byte

	operation := func() error {
		attempts++
		var bodyReader io.Reader
		if payload != nil {
			bodyReader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, rawURL, bodyReader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		for key, value := range c.defaultHeaders {
			req.Header.Set(key, value)
		}
		req.Header.Set("X-Request-ID", requestID)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
		if err != nil {
			return fmt.Errorf("failed to read response body: %w", err)
		}

		if resp.StatusCode >= 400 {
			httpErr := &HTTPError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				URL:        rawURL,
				Method:     method,
				Body:       string(data),
			}
			if c.retryConfig != nil && slices.Contains(c.retryConfig.RetryableStatusCodes, resp.StatusCode) {
				return httpErr
			}
			return backoff.Permanent(httpErr)
		}

		result = data
		return nil
	}

	var requestErr error
	if c.retryConfig != nil && c.retryConfig.MaxRetries > 0 {
		expBackoff := backoff.NewExponentialBackOff()
		expBackoff.InitialInterval = c.retryConfig.InitialInterval
		expBackoff.MaxInterval = c.retryConfig.MaxInterval
		expBackoff.Multiplier = c.retryConfig.Multiplier
		expBackoff.MaxElapsedTime = 0

		policy := backoff.WithContext(backoff.WithMaxRetries(expBackoff, uint64(c.retryConfig.MaxRetries)), ctx)
		requestErr = backoff.Retry(operation, policy)
	} else {
		requestErr = operation()
		if permanent, ok := requestErr.(*backoff.PermanentError); ok {
			requestErr = permanent.Err
		}
	}

	duration := time.Since(start)
	if requestErr != nil {
		c.logger.Warn("HTTP request failed",
			zap.String("method", method),
			zap.String("url", rawURL),
			zap.String("request_id", requestID),
			zap.Int("attempts", attempts),
			zap.Error(requestErr),
			zap.Duration("duration", duration))
		return nil, requestErr
	}

	c.logger.Debug("HTTP request successful",
		zap.String("method", method),
		zap.String("url", rawURL),
		zap.String("request_id", requestID),
		zap.Int("attempts", attempts),
		zap.Duration("duration", duration))

	return result, nil
}
