package gateway

import (
	"bytes"
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

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"vidgen/internal/config"
	"vidgen/internal/logging"
	"vidgen/internal/services"
)

// HTTPDoer describes the HTTP client used by the gateway.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// RequestIDHeader carries the correlation id of every request.
const RequestIDHeader = "X-Request-ID"

// Client talks to the remote render service. Every call is bounded by the
// configured timeout; preview calls additionally pass through a rate limiter.
type Client struct {
	base    *url.URL
	http    HTTPDoer
	timeout time.Duration
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) {
		if doer != nil {
			c.http = doer
		}
	}
}

// WithLogger attaches a logger for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "gateway")
	}
}

// WithPreviewRate limits preview calls to perSecond with the given burst.
// A non-positive rate disables the limiter.
func WithPreviewRate(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New constructs a client for the service at baseURL.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "gateway", "init", "base url is empty", nil)
	}
	if !strings.Contains(baseURL, "://") {
		baseURL = "http://" + baseURL
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "gateway", "init", "parse base url", err)
	}
	base.Path = strings.TrimRight(base.Path, "/")
	base.RawQuery = ""
	base.Fragment = ""

	c := &Client{
		base:    base,
		http:    http.DefaultClient,
		timeout: timeout,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig builds a client from the gateway section of cfg.
func NewFromConfig(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Client, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "gateway", "init", "config is nil", nil)
	}
	base := []Option{
		WithLogger(logger),
		WithPreviewRate(cfg.Gateway.PreviewRatePerSecond, cfg.Gateway.PreviewBurst),
	}
	return New(cfg.Gateway.BaseURL, cfg.GatewayTimeout(), append(base, opts...)...)
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.base.String()
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = c.base.Path + path
	return u.String()
}

// waitPreview blocks until the preview limiter admits one more call.
func (c *Client) waitPreview(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return services.Wrap(services.ErrTransport, "gateway", "preview", "rate limiter", err)
	}
	return nil
}

// do sends one request and returns the response body. body is JSON encoded
// when non-nil. Non-2xx responses become *StatusError.
func (c *Client) do(ctx context.Context, operation, method, path string, body any) ([]byte, http.Header, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, nil, services.Wrap(services.ErrValidation, "gateway", operation, "encode request", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrTransport, "gateway", operation, "build request", err)
	}
	requestID, ok := services.RequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.NewString()
	}
	req.Header.Set(RequestIDHeader, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("gateway request failed",
			logging.String("operation", operation),
			logging.String(logging.FieldCorrelationID, requestID),
			logging.Error(err),
		)
		return nil, nil, services.Wrap(services.ErrTransport, "gateway", operation, "request failed", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, services.Wrap(services.ErrTransport, "gateway", operation, "read response", err)
	}
	c.logger.Debug("gateway request",
		logging.String("operation", operation),
		logging.String("method", method),
		logging.String("path", path),
		logging.Int("status", resp.StatusCode),
		logging.Duration("elapsed", time.Since(start)),
		logging.String(logging.FieldCorrelationID, requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		statusErr := &StatusError{Code: resp.StatusCode, Detail: errorDetail(data, resp.Status)}
		return nil, nil, services.Wrap(services.ErrTransport, "gateway", operation, "", statusErr)
	}
	return data, resp.Header, nil
}

// doJSON sends a request and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, operation, method, path string, body, out any) error {
	data, _, err := c.do(ctx, operation, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return services.Wrap(services.ErrTransport, "gateway", operation, "decode response", err)
	}
	return nil
}

// StatusError is a non-2xx answer from the render service.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("render service returned status %d", e.Code)
	}
	return fmt.Sprintf("render service returned status %d: %s", e.Code, e.Detail)
}

// StatusCode extracts the HTTP status from a gateway error, or 0.
func StatusCode(err error) int {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code
	}
	return 0
}

// errorDetail pulls the server's message out of a {"detail": ...} body.
// Validation errors carry a list there, which is rendered as JSON.
func errorDetail(body []byte, fallback string) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var text string
		if err := json.Unmarshal(payload.Detail, &text); err == nil {
			return strings.TrimSpace(text)
		}
		return strings.TrimSpace(string(payload.Detail))
	}
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" && len(trimmed) <= 512 {
		return trimmed
	}
	return strings.TrimSpace(fallback)
}
