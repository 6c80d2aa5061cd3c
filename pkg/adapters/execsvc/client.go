// Package execsvc is the HTTP client for the remote execution service that
// evaluates compiled workflows and reports the trading account balance.
package execsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/magnetrade/internal/logging"
	"github.com/aretw0/magnetrade/pkg/compiler"
	"github.com/aretw0/magnetrade/pkg/domain"
)

// ErrUnreachable wraps transport failures: refused connections, timeouts, resets.
var ErrUnreachable = errors.New("unreachable")

// StatusError is returned when the service answers with a non-2xx status.
type StatusError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("execution service %s: status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("execution service %s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// maxErrorBody caps how much of an error response is kept in StatusError.
const maxErrorBody = 512

// Client talks to the execution service. It never retries.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout bounds every request. Zero means no timeout.
// It applies to the http.Client in use once all options have run.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger configures a logger for the Client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client for the service at baseURL, e.g. "http://localhost:5000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

type commandsRequest struct {
	Commands string `json:"commands"`
}

// Evaluate posts the JSON-encoded workflow to /commands and decodes the
// per-command results.
func (c *Client) Evaluate(ctx context.Context, w compiler.Workflow) (compiler.Results, error) {
	encoded, err := w.Encode()
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(commandsRequest{Commands: encoded})
	if err != nil {
		return nil, fmt.Errorf("failed to encode commands request: %w", err)
	}

	var results compiler.Results
	if err := c.post(ctx, "/commands", bytes.NewReader(body), &results); err != nil {
		return nil, err
	}
	if results == nil {
		results = compiler.Results{}
	}
	c.logger.Debug("workflow evaluated", "workflows", len(w), "results", len(results))
	return results, nil
}

// Balance posts to /balance with no body.
func (c *Client) Balance(ctx context.Context) (*domain.Balance, error) {
	var balance domain.Balance
	if err := c.post(ctx, "/balance", nil, &balance); err != nil {
		return nil, err
	}
	return &balance, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execution service %s: %w: %w", endpoint, ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(snippet)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", endpoint, err)
	}
	return nil
}
