package analytics

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/ustamapp/ustamapp-client/internal/domain"
)

// IngestPath is where event batches are posted.
const IngestPath = "/api/analytics/events"

const defaultSendTimeout = 10 * time.Second

// Sender delivers a batch of events.
type Sender interface {
	Send(ctx context.Context, events []domain.AnalyticsEvent) error
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, events []domain.AnalyticsEvent) error

func (f SenderFunc) Send(ctx context.Context, events []domain.AnalyticsEvent) error {
	return f(ctx, events)
}

// HTTPSender posts batches with a resty client of its own, so analytics
// traffic is never reported back to the call observers.
type HTTPSender struct {
	client  *resty.Client
	timeout time.Duration
}

type ingestRequest struct {
	Events []domain.AnalyticsEvent `json:"events"`
}

func NewHTTPSender(baseURL string, timeout time.Duration) (*HTTPSender, error) {
	return NewHTTPSenderWithClient(baseURL, timeout, resty.New())
}

func NewHTTPSenderWithClient(baseURL string, timeout time.Duration, client *resty.Client) (*HTTPSender, error) {
	trimmedBaseURL := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmedBaseURL == "" {
		return nil, fmt.Errorf("analytics base url is required")
	}
	if _, err := url.ParseRequestURI(trimmedBaseURL); err != nil {
		return nil, fmt.Errorf("invalid analytics base url: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("resty client is required")
	}
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}

	client.SetRetryCount(0)
	client.SetBaseURL(trimmedBaseURL)

	return &HTTPSender{client: client, timeout: timeout}, nil
}

func (s *HTTPSender) Send(ctx context.Context, events []domain.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ingestRequest{Events: events}).
		Post(IngestPath)
	if err != nil {
		return fmt.Errorf("failed to send analytics events: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("analytics ingest returned status %d", resp.StatusCode())
	}
	return nil
}
