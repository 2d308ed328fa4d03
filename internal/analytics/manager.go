// Package analytics records user interaction and API telemetry and ships it
// to the backend asynchronously.
package analytics

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/observability"
	"go.uber.org/zap"
)

const (
	defaultBufferSize = 256
	defaultBatchSize  = 20
	flushTimeout      = 5 * time.Second
)

// Event outcomes recorded in metrics.
const (
	resultSent    = "sent"
	resultDropped = "dropped"
	resultDenied  = "denied"
	resultFailed  = "failed"
)

// ScrollMilestones are the depth percentages reported once per page.
var ScrollMilestones = []int{25, 50, 75, 90}

// ConsentFunc reports whether analytics consent is currently granted.
type ConsentFunc func(ctx context.Context) bool

// ClickTarget describes the clicked element. Links are reported by href,
// everything else by its visible text.
type ClickTarget struct {
	Element string
	Text    string
	Href    string
}

type Manager struct {
	sessionID string
	sender    Sender
	consent   ConsentFunc
	metrics   *observability.Metrics
	logger    *zap.Logger
	now       func() time.Time
	batchSize int

	queue chan domain.AnalyticsEvent

	mu         sync.Mutex
	page       string
	milestones map[int]bool
	hidden     bool
	closed     bool
}

type Option func(*Manager)

func WithConsent(consent ConsentFunc) Option {
	return func(m *Manager) { m.consent = consent }
}

func WithBufferSize(size int) Option {
	return func(m *Manager) {
		if size > 0 {
			m.queue = make(chan domain.AnalyticsEvent, size)
		}
	}
}

func WithBatchSize(size int) Option {
	return func(m *Manager) {
		if size > 0 {
			m.batchSize = size
		}
	}
}

func WithMetrics(metrics *observability.Metrics) Option {
	return func(m *Manager) { m.metrics = metrics }
}

func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// NewManager creates a manager for a new session and queues session_start.
func NewManager(sender Sender, opts ...Option) (*Manager, error) {
	if sender == nil {
		return nil, fmt.Errorf("analytics sender is required")
	}

	m := &Manager{
		sessionID:  uuid.NewString(),
		sender:     sender,
		logger:     zap.NewNop(),
		now:        time.Now,
		batchSize:  defaultBatchSize,
		queue:      make(chan domain.AnalyticsEvent, defaultBufferSize),
		milestones: make(map[int]bool),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.logger = m.logger.With(zap.String("analyticsSession", m.sessionID))
	m.emit(domain.EventSessionStart, nil)
	return m, nil
}

var _ apiclient.CallObserver = (*Manager)(nil)

func (m *Manager) SessionID() string {
	return m.sessionID
}

// PageView records navigation to page and resets the scroll milestones.
func (m *Manager) PageView(page string, title string) {
	m.mu.Lock()
	m.page = strings.TrimSpace(page)
	m.milestones = make(map[int]bool)
	m.mu.Unlock()

	props := map[string]any{}
	if title != "" {
		props["title"] = title
	}
	m.emit(domain.EventPageView, props)
}

func (m *Manager) Click(target ClickTarget) {
	props := map[string]any{}
	if element := strings.ToLower(strings.TrimSpace(target.Element)); element != "" {
		props["element"] = element
	}
	if href := strings.TrimSpace(target.Href); href != "" {
		props["href"] = href
	} else if text := strings.TrimSpace(target.Text); text != "" {
		props["text"] = text
	}
	m.emit(domain.EventClick, props)
}

func (m *Manager) FormSubmit(formID string) {
	m.emit(domain.EventFormSubmit, map[string]any{"form_id": strings.TrimSpace(formID)})
}

// Scroll reports every milestone at or below percent that was not yet
// reported on the current page.
func (m *Manager) Scroll(percent float64) {
	var reached []int

	m.mu.Lock()
	for _, milestone := range ScrollMilestones {
		if percent >= float64(milestone) && !m.milestones[milestone] {
			m.milestones[milestone] = true
			reached = append(reached, milestone)
		}
	}
	m.mu.Unlock()

	for _, milestone := range reached {
		m.emit(domain.EventScrollDepth, map[string]any{"depth": milestone})
	}
}

// Visibility tracks the app going to the background and back. Hiding ends
// the session; becoming visible again starts a new one.
func (m *Manager) Visibility(visible bool) {
	m.mu.Lock()
	wasHidden := m.hidden
	m.hidden = !visible
	m.mu.Unlock()

	switch {
	case !visible && !wasHidden:
		m.emit(domain.EventSessionEnd, map[string]any{"reason": "hidden"})
	case visible && wasHidden:
		m.emit(domain.EventSessionStart, map[string]any{"reason": "visible"})
	}
}

// ObserveCall turns backend API calls into api_call events. It only
// enqueues, so it never blocks the request path.
func (m *Manager) ObserveCall(_ context.Context, record apiclient.CallRecord) {
	if !strings.Contains(record.Endpoint, "/api/") || strings.HasPrefix(record.Endpoint, "/api/analytics") {
		return
	}

	props := map[string]any{
		"endpoint":    record.Endpoint,
		"method":      record.Method,
		"status":      record.Status,
		"duration_ms": record.Duration.Milliseconds(),
		"success":     record.Success,
	}
	if record.Code != "" {
		props["error_code"] = record.Code
	}
	m.emit(domain.EventAPICall, props)
}

// Close queues session_end and stops accepting events. Run returns once the
// remaining events are sent.
func (m *Manager) Close() {
	m.mu.Lock()
	hidden := m.hidden
	m.mu.Unlock()

	if !hidden {
		m.emit(domain.EventSessionEnd, map[string]any{"reason": "close"})
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		m.closed = true
		close(m.queue)
	}
}

func (m *Manager) emit(name string, props map[string]any) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		m.metrics.IncAnalyticsEvent(name, resultDropped)
		return
	}

	if len(props) == 0 {
		props = nil
	}
	event := domain.AnalyticsEvent{
		Name:       name,
		SessionID:  m.sessionID,
		Page:       m.page,
		Timestamp:  m.now().UTC(),
		Properties: props,
	}

	select {
	case m.queue <- event:
	default:
		m.metrics.IncAnalyticsEvent(name, resultDropped)
		m.logger.Warn("analytics queue full, dropping event", zap.String("event", name))
	}
}

// Run sends queued events in batches until ctx is done or the manager is
// closed. Remaining events are flushed before it returns.
func (m *Manager) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for {
		select {
		case <-ctx.Done():
			m.flush()
			return nil
		case event, ok := <-m.queue:
			if !ok {
				return nil
			}
			m.send(ctx, m.collect(event))
		}
	}
}

// collect gathers first plus whatever else is queued, up to batchSize.
func (m *Manager) collect(first domain.AnalyticsEvent) []domain.AnalyticsEvent {
	batch := []domain.AnalyticsEvent{first}
	for len(batch) < m.batchSize {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return batch
			}
			batch = append(batch, event)
		default:
			return batch
		}
	}
	return batch
}

func (m *Manager) flush() {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	for {
		select {
		case event, ok := <-m.queue:
			if !ok {
				return
			}
			m.send(ctx, m.collect(event))
		default:
			return
		}
	}
}

func (m *Manager) send(ctx context.Context, batch []domain.AnalyticsEvent) {
	if m.consent != nil && !m.consent(ctx) {
		for _, event := range batch {
			m.metrics.IncAnalyticsEvent(event.Name, resultDenied)
		}
		return
	}

	if err := m.sender.Send(ctx, batch); err != nil {
		for _, event := range batch {
			m.metrics.IncAnalyticsEvent(event.Name, resultFailed)
		}
		m.logger.Warn("failed to send analytics events",
			zap.Int("count", len(batch)),
			zap.Error(err),
		)
		return
	}

	for _, event := range batch {
		m.metrics.IncAnalyticsEvent(event.Name, resultSent)
	}
}
