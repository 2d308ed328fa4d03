package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ustamapp/ustamapp-client/internal/observability"
	"go.uber.org/zap"
)

const DefaultTimeout = 30 * time.Second

// RequestSpec describes a single JSON request.
type RequestSpec struct {
	Method       string
	Endpoint     string
	Body         any
	Query        url.Values
	Headers      map[string]string
	RequiresAuth bool
	// Timeout overrides the client default when positive.
	Timeout time.Duration
}

// Client performs backend requests with a bounded duration, bearer auth and
// normalized APIError failures.
type Client struct {
	http      *resty.Client
	baseURL   string
	timeout   time.Duration
	retry     RetryPolicy
	tokens    TokenSource
	expirer   SessionExpirer
	observers []CallObserver
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

type Option func(*Client)

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

func WithRetryPolicy(policy RetryPolicy) Option {
	return func(c *Client) { c.retry = policy }
}

func WithTokenSource(tokens TokenSource) Option {
	return func(c *Client) { c.tokens = tokens }
}

func WithSessionExpirer(expirer SessionExpirer) Option {
	return func(c *Client) { c.expirer = expirer }
}

// WithObserver registers an observer for every request attempt.
func WithObserver(observer CallObserver) Option {
	return func(c *Client) {
		if observer != nil {
			c.observers = append(c.observers, observer)
		}
	}
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(c *Client) { c.metrics = metrics }
}

func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func New(baseURL string, opts ...Option) (*Client, error) {
	return NewWithClient(baseURL, resty.New(), opts...)
}

func NewWithClient(baseURL string, client *resty.Client, opts ...Option) (*Client, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedBaseURL == "" {
		return nil, fmt.Errorf("api base url is required")
	}
	if _, err := url.ParseRequestURI(trimmedBaseURL); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}

	// Retries are decided by RetryPolicy, never by resty.
	client.SetRetryCount(0)
	client.SetBaseURL(trimmedBaseURL)

	c := &Client{
		http:    client,
		baseURL: trimmedBaseURL,
		timeout: DefaultTimeout,
		retry:   NoRetry(),
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do performs spec and decodes a successful JSON body into out. out may be
// nil, *json.RawMessage, or any value accepted by json.Unmarshal.
func (c *Client) Do(ctx context.Context, spec RequestSpec, out any) error {
	if c == nil || c.http == nil {
		return fmt.Errorf("api client is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	method := strings.ToUpper(strings.TrimSpace(spec.Method))
	if method == "" {
		method = http.MethodGet
	}
	endpoint := strings.TrimSpace(spec.Endpoint)
	if endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}

	ctx, _ = observability.EnsureRequestID(ctx)

	attempt := 0
	return c.retry.run(ctx, func() error {
		attempt++
		status, body, err := c.execute(ctx, call{
			method:       method,
			endpoint:     endpoint,
			timeout:      spec.Timeout,
			requiresAuth: spec.RequiresAuth,
			attempt:      attempt,
			prepare: func(req *resty.Request) {
				req.SetHeader("Content-Type", "application/json")
				req.SetHeader("Accept", "application/json")
				for key, value := range spec.Headers {
					req.SetHeader(key, value)
				}
				if len(spec.Query) > 0 {
					req.SetQueryParamsFromValues(spec.Query)
				}
				if method != http.MethodGet && spec.Body != nil {
					req.SetBody(spec.Body)
				}
			},
		})
		if err != nil {
			return err
		}
		return decodeBody(status, body, out)
	})
}

// Request performs spec and returns the decoded body as T.
func Request[T any](ctx context.Context, c *Client, spec RequestSpec) (T, error) {
	var out T
	err := c.Do(ctx, spec, &out)
	return out, err
}

type call struct {
	method       string
	endpoint     string
	timeout      time.Duration
	requiresAuth bool
	attempt      int
	prepare      func(req *resty.Request)
}

func (c *Client) execute(ctx context.Context, cl call) (int, []byte, error) {
	timeout := cl.timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := c.http.R().SetContext(reqCtx)
	cl.prepare(req)

	requestID, _ := observability.RequestIDFromContext(ctx)
	if requestID != "" {
		req.SetHeader(observability.RequestIDHeader, requestID)
	}
	if cl.requiresAuth && c.tokens != nil {
		if token, ok := c.tokens.Token(ctx); ok {
			req.SetAuthToken(token)
		}
	}

	start := c.now()
	response, err := req.Execute(cl.method, cl.endpoint)
	duration := c.now().Sub(start)

	var (
		status int
		body   []byte
		apiErr *APIError
	)
	if response != nil {
		status = response.StatusCode()
		body = response.Body()
	}

	switch {
	case err != nil:
		apiErr = transportError(ctx, reqCtx, err)
		status = apiErr.Status
	case response == nil:
		apiErr = &APIError{Message: msgNetwork, Code: CodeNetwork}
	case status == http.StatusUnauthorized:
		apiErr = &APIError{Message: msgUnauthorized, Status: status, Code: CodeUnauthorized}
	case status < http.StatusOK || status >= http.StatusMultipleChoices:
		apiErr = serverError(status, body)
	}

	record := CallRecord{
		Endpoint:  endpointPath(cl.endpoint),
		Method:    cl.method,
		Status:    status,
		Duration:  duration,
		Success:   apiErr == nil,
		Attempt:   cl.attempt,
		RequestID: requestID,
	}
	if apiErr != nil {
		record.Code = apiErr.Code
	}
	c.report(ctx, record)

	if apiErr == nil {
		return status, body, nil
	}

	logger := observability.WithContextLogger(c.logger, ctx)
	logger.Warn("api request failed",
		zap.String("method", cl.method),
		zap.String("endpoint", record.Endpoint),
		zap.Int("status", apiErr.Status),
		zap.String("code", apiErr.Code),
		zap.Int("attempt", cl.attempt),
		zap.Duration("duration", duration),
	)

	if apiErr.Code == CodeUnauthorized && c.expirer != nil {
		c.expirer.Expire(ctx)
	}

	return status, nil, apiErr
}

// transportError classifies a failure that produced no HTTP response.
func transportError(parent context.Context, reqCtx context.Context, err error) *APIError {
	if errors.Is(parent.Err(), context.Canceled) {
		return &APIError{Message: msgCanceled, Code: CodeCanceled, Cause: context.Canceled}
	}

	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &APIError{Message: msgTimeout, Status: http.StatusRequestTimeout, Code: CodeTimeout, Cause: err}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &APIError{Message: msgTimeout, Status: http.StatusRequestTimeout, Code: CodeTimeout, Cause: err}
	}

	return &APIError{Message: msgNetwork, Code: CodeNetwork, Cause: err}
}

func (c *Client) report(ctx context.Context, record CallRecord) {
	c.metrics.ObserveAPICall(record.Method, record.Endpoint, record.Code, record.Duration)

	for _, observer := range c.observers {
		c.notify(ctx, observer, record)
	}
}

func (c *Client) notify(ctx context.Context, observer CallObserver, record CallRecord) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("call observer panicked",
				zap.String("endpoint", record.Endpoint),
				zap.Any("panic", r),
			)
		}
	}()
	observer.ObserveCall(ctx, record)
}

func decodeBody(status int, body []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], body...)
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &APIError{
			Message: msgInvalidResponse,
			Status:  status,
			Code:    CodeInvalidResponse,
			Cause:   err,
		}
	}
	return nil
}

func endpointPath(endpoint string) string {
	if idx := strings.IndexAny(endpoint, "?#"); idx >= 0 {
		return endpoint[:idx]
	}
	return endpoint
}
