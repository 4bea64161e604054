package ca

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrInvalidArgument is returned before any request is made when a
	// required identifier is missing or a value is out of range.
	ErrInvalidArgument = errors.New("ca: invalid argument")

	// ErrNotDiagram is returned when a diagram is requested for an artifact
	// type that cannot have one. The service takes minutes to time out on
	// such requests, so they are refused locally.
	ErrNotDiagram = errors.New("ca: artifact type has no diagram")

	// ErrNoSource is returned by ListArchitectures when neither private nor
	// collaboration architectures were requested.
	ErrNoSource = errors.New("ca: no architecture source selected")
)

// Client is a client for the Cognitive Architect API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures the Client during construction.
type Option func(*clientConfig) error

type clientConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
}

// New creates a new Client for the service rooted at baseURL.
// The personal token is sent as an Authorization header on every request.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("ca: baseURL is required")
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	cfg := &clientConfig{}
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}

	httpClient := cfg.httpClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if cfg.timeout > 0 {
		httpClient.Timeout = cfg.timeout
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *clientConfig) error {
		cfg.httpClient = c
		return nil
	}
}

// WithLogger configures structured logging.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *clientConfig) error {
		cfg.logger = l
		return nil
	}
}

// WithTimeout sets a timeout on the HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cfg *clientConfig) error {
		if d < 0 {
			return fmt.Errorf("%w: negative timeout %s", ErrInvalidArgument, d)
		}
		cfg.timeout = d
		return nil
	}
}

// BaseURL returns the service root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do executes a request and returns the raw response body.
// If the response has an error status, it returns an *APIError.
func (c *Client) do(ctx context.Context, method, url, operation string, acceptJSON bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: create request: %w", operation, err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "token "+c.token)
	}
	if acceptJSON {
		req.Header.Set("Accept", "application/json")
	}

	c.logger.InfoContext(ctx, "API request", "operation", operation, "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "API response", "operation", operation, "status", resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errRS ErrorRS
		if json.Unmarshal(body, &errRS) == nil && errRS.text() != "" {
			return nil, newAPIError(operation, resp.StatusCode, errRS.text())
		}
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, newAPIError(operation, resp.StatusCode, msg)
	}
	return body, nil
}

// doJSON executes a request and decodes the JSON response into dst.
func (c *Client) doJSON(ctx context.Context, method, url, operation string, dst any) error {
	body, err := c.do(ctx, method, url, operation, true)
	if err != nil {
		return err
	}
	if dst != nil {
		if err := json.Unmarshal(body, dst); err != nil {
			return fmt.Errorf("%s: decode response: %w", operation, err)
		}
	}
	return nil
}

func required(operation string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			return fmt.Errorf("%s: %w: %s is required", operation, ErrInvalidArgument, pairs[i])
		}
	}
	return nil
}
