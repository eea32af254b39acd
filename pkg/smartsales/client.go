package smartsales

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/smartsales/pkg/config"
	pkgerrors "github.com/angelmondragon/smartsales/pkg/errors"
	"github.com/angelmondragon/smartsales/pkg/logger"
	"github.com/angelmondragon/smartsales/pkg/metrics"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	breakerName         = "smartsales-backend"
	defaultMaxFailures  = 5
	maxResponseBodySize = 4 << 20
)

// errCallerGone marks failures caused by the caller's own context, which say
// nothing about backend health.
var errCallerGone = errors.New("caller abandoned request")

// Client talks to the SmartSales REST API. Bearer credentials are read from the request context.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*rawResponse]
	metrics *metrics.BackendMetrics
	logg    *logger.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithMetrics records per-endpoint call metrics.
func WithMetrics(m *metrics.BackendMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLogger enables breaker state logging.
func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		c.logg = logg
	}
}

// New builds a client for the configured backend.
func New(cfg config.BackendConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parsing backend url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BaseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	c := &Client{
		baseURL: base,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	maxFailures := cfg.BreakerMaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	c.breaker = gobreaker.NewCircuitBreaker[*rawResponse](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errCallerGone)
		},
		OnStateChange: c.onBreakerStateChange,
	})
	return c, nil
}

func (c *Client) onBreakerStateChange(name string, from, to gobreaker.State) {
	c.metrics.SetBreakerState(name, int(to))
	if c.logg == nil {
		return
	}
	ctx := c.logg.WithFields(context.Background(), map[string]any{
		"breaker": name,
		"from":    from.String(),
		"to":      to.String(),
	})
	c.logg.Warn(ctx, "backend breaker state changed")
}

type request struct {
	endpoint string
	method   string
	path     string
	query    url.Values
	json     any
	form     *multipartForm
	public   bool
}

type rawResponse struct {
	status int
	body   []byte
}

type serverStatusError struct {
	raw *rawResponse
}

func (e *serverStatusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.raw.status)
}

func (r request) encode() ([]byte, string, error) {
	switch {
	case r.form != nil:
		return r.form.body, r.form.contentType, nil
	case r.json != nil:
		payload, err := json.Marshal(r.json)
		if err != nil {
			return nil, "", err
		}
		return payload, "application/json", nil
	}
	return nil, "", nil
}

// do sends the request through the breaker and maps every failure onto a typed error.
func (c *Client) do(ctx context.Context, req request) (*rawResponse, error) {
	token, hasToken := TokenFromContext(ctx)
	if !req.public && !hasToken {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials")
	}

	payload, contentType, err := req.encode()
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding backend request")
	}

	target := c.baseURL.ResolveReference(&url.URL{Path: req.path})
	if len(req.query) > 0 {
		target.RawQuery = req.query.Encode()
	}

	start := time.Now()
	raw, err := c.breaker.Execute(func() (*rawResponse, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(ctx, req.method, target.String(), body)
		if err != nil {
			return nil, err
		}
		httpReq.Header.Set("Accept", "application/json")
		if contentType != "" {
			httpReq.Header.Set("Content-Type", contentType)
		}
		if hasToken {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}

		res, err := c.http.Do(httpReq)
		if err != nil {
			return nil, callerError(ctx, err)
		}
		defer res.Body.Close()

		data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBodySize))
		if err != nil {
			return nil, callerError(ctx, err)
		}
		out := &rawResponse{status: res.StatusCode, body: data}
		if res.StatusCode >= http.StatusInternalServerError {
			return nil, &serverStatusError{raw: out}
		}
		return out, nil
	})
	elapsed := time.Since(start)

	if err != nil {
		var serverErr *serverStatusError
		switch {
		case errors.As(err, &serverErr):
			c.metrics.ObserveCall(req.endpoint, "http_5xx", elapsed)
			return nil, statusError(req.endpoint, serverErr.raw)
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			c.metrics.ObserveCall(req.endpoint, "breaker_open", elapsed)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not reach server")
		default:
			c.metrics.ObserveCall(req.endpoint, "transport", elapsed)
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not reach server")
		}
	}

	if raw.status >= http.StatusBadRequest {
		c.metrics.ObserveCall(req.endpoint, "http_4xx", elapsed)
		return nil, statusError(req.endpoint, raw)
	}
	c.metrics.ObserveCall(req.endpoint, "ok", elapsed)
	return raw, nil
}

func callerError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return fmt.Errorf("%w: %w", errCallerGone, err)
	}
	return err
}

// statusError surfaces the backend's own error text when it sent one.
func statusError(endpoint string, raw *rawResponse) error {
	message := backendMessage(raw.body)
	if message == "" {
		message = fmt.Sprintf("%s failed with status %d", endpoint, raw.status)
	}
	return pkgerrors.New(pkgerrors.CodeForStatus(raw.status), message).WithDetails(map[string]any{
		"status":   raw.status,
		"endpoint": endpoint,
	})
}

func backendMessage(body []byte) string {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, key := range []string{"error", "message", "detail"} {
		raw, ok := payload[key]
		if !ok {
			continue
		}
		var text string
		if err := json.Unmarshal(raw, &text); err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text)
		}
	}
	return ""
}
