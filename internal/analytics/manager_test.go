package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ustamapp/ustamapp-client/internal/apiclient"
	"github.com/ustamapp/ustamapp-client/internal/domain"
	"github.com/ustamapp/ustamapp-client/internal/observability"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type recordingSender struct {
	mu     sync.Mutex
	events []domain.AnalyticsEvent
	sendFn func(events []domain.AnalyticsEvent) error
}

func (s *recordingSender) Send(_ context.Context, events []domain.AnalyticsEvent) error {
	if s.sendFn != nil {
		if err := s.sendFn(events); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
	return nil
}

func (s *recordingSender) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.events))
	for _, e := range s.events {
		names = append(names, e.Name)
	}
	return names
}

func (s *recordingSender) Events() []domain.AnalyticsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AnalyticsEvent(nil), s.events...)
}

func scrape(t *testing.T, metrics *observability.Metrics) string {
	t.Helper()

	rec := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
	return rec.Body.String()
}

// runAndClose drives fn against a running manager and waits for the drain.
func runAndClose(t *testing.T, m *Manager, fn func()) {
	t.Helper()

	done := make(chan error, 1)
	go func() { done <- m.Run(context.Background()) }()

	fn()
	m.Close()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after Close")
	}
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestManagerSessionLifecycle(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m, err := NewManager(sender)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}

	runAndClose(t, m, func() {
		m.PageView("/", "Ana Sayfa")
		m.Visibility(false)
		m.Visibility(false)
		m.Visibility(true)
	})

	want := []string{
		domain.EventSessionStart,
		domain.EventPageView,
		domain.EventSessionEnd,
		domain.EventSessionStart,
		domain.EventSessionEnd,
	}
	if got := sender.Names(); !equalNames(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}

	for _, e := range sender.Events() {
		if e.SessionID != m.SessionID() || e.SessionID == "" {
			t.Fatalf("event %s session = %q, want %q", e.Name, e.SessionID, m.SessionID())
		}
	}
}

func TestManagerCloseWhileHiddenDoesNotRepeatSessionEnd(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m, _ := NewManager(sender)

	runAndClose(t, m, func() {
		m.Visibility(false)
	})

	want := []string{domain.EventSessionStart, domain.EventSessionEnd}
	if got := sender.Names(); !equalNames(got, want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
}

func TestManagerScrollMilestonesOncePerPage(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m, _ := NewManager(sender)

	runAndClose(t, m, func() {
		m.PageView("/ustalar", "")
		m.Scroll(30)
		m.Scroll(60)
		m.Scroll(55)
		m.Scroll(100)
		m.PageView("/maliyet", "")
		m.Scroll(26)
	})

	var depths []int
	var pages []string
	for _, e := range sender.Events() {
		if e.Name != domain.EventScrollDepth {
			continue
		}
		depths = append(depths, e.Properties["depth"].(int))
		pages = append(pages, e.Page)
	}

	wantDepths := []int{25, 50, 75, 90, 25}
	if len(depths) != len(wantDepths) {
		t.Fatalf("depths = %v, want %v", depths, wantDepths)
	}
	for i := range wantDepths {
		if depths[i] != wantDepths[i] {
			t.Fatalf("depths = %v, want %v", depths, wantDepths)
		}
	}
	if pages[0] != "/ustalar" || pages[4] != "/maliyet" {
		t.Fatalf("pages = %v", pages)
	}
}

func TestManagerClickAndForm(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m, _ := NewManager(sender)

	runAndClose(t, m, func() {
		m.Click(ClickTarget{Element: "BUTTON", Text: " Teklif Al "})
		m.Click(ClickTarget{Element: "a", Text: "Giriş", Href: "/login"})
		m.FormSubmit("job-request-form")
	})

	events := sender.Events()
	if len(events) != 5 {
		t.Fatalf("events = %d, want 5", len(events))
	}
	if events[1].Properties["text"] != "Teklif Al" || events[1].Properties["element"] != "button" {
		t.Fatalf("button click props = %v", events[1].Properties)
	}
	if events[2].Properties["href"] != "/login" || events[2].Properties["text"] != nil {
		t.Fatalf("link click props = %v", events[2].Properties)
	}
	if events[3].Properties["form_id"] != "job-request-form" {
		t.Fatalf("form props = %v", events[3].Properties)
	}
}

func TestManagerObserveCallFiltersEndpoints(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m, _ := NewManager(sender)

	runAndClose(t, m, func() {
		ctx := context.Background()
		m.ObserveCall(ctx, apiclient.CallRecord{Endpoint: "/api/jobs", Method: "GET", Status: 200, Duration: 42 * time.Millisecond, Success: true})
		m.ObserveCall(ctx, apiclient.CallRecord{Endpoint: "/health", Method: "GET", Status: 200, Success: true})
		m.ObserveCall(ctx, apiclient.CallRecord{Endpoint: IngestPath, Method: "POST", Status: 200, Success: true})
		m.ObserveCall(ctx, apiclient.CallRecord{Endpoint: "/api/jobs/1", Method: "GET", Status: 408, Code: apiclient.CodeTimeout})
	})

	var calls []domain.AnalyticsEvent
	for _, e := range sender.Events() {
		if e.Name == domain.EventAPICall {
			calls = append(calls, e)
		}
	}
	if len(calls) != 2 {
		t.Fatalf("api_call events = %d, want 2", len(calls))
	}

	first := calls[0].Properties
	if first["endpoint"] != "/api/jobs" || first["duration_ms"] != int64(42) || first["success"] != true {
		t.Fatalf("first api_call = %v", first)
	}
	if calls[1].Properties["error_code"] != apiclient.CodeTimeout {
		t.Fatalf("second api_call = %v", calls[1].Properties)
	}
}

func TestManagerConsentGate(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics()
	sender := &recordingSender{}
	m, _ := NewManager(sender,
		WithConsent(func(context.Context) bool { return false }),
		WithMetrics(metrics),
	)

	runAndClose(t, m, func() {
		m.PageView("/", "")
	})

	if got := sender.Names(); len(got) != 0 {
		t.Fatalf("events sent without consent: %v", got)
	}
	if want := `ustamapp_analytics_events_total{event="page_view",result="denied"} 1`; !strings.Contains(scrape(t, metrics), want) {
		t.Fatalf("metrics missing %s", want)
	}
}

func TestManagerDropsWhenQueueFull(t *testing.T) {
	t.Parallel()

	metrics := observability.NewMetrics()
	core, logs := observer.New(zap.WarnLevel)
	sender := &recordingSender{}
	m, _ := NewManager(sender,
		WithBufferSize(2),
		WithMetrics(metrics),
		WithLogger(zap.New(core)),
	)

	// session_start occupies one slot; the second click has nowhere to go.
	m.Click(ClickTarget{Text: "a"})
	m.Click(ClickTarget{Text: "b"})

	if want := `ustamapp_analytics_events_total{event="click",result="dropped"} 1`; !strings.Contains(scrape(t, metrics), want) {
		t.Fatalf("metrics missing %s", want)
	}
	if logs.FilterMessage("analytics queue full, dropping event").Len() != 1 {
		t.Fatalf("expected drop warning, got %v", logs.All())
	}

	m.Close()
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := sender.Names(); !equalNames(got, []string{domain.EventSessionStart, domain.EventClick}) {
		t.Fatalf("events = %v", got)
	}
}

func TestManagerSendFailureIsLoggedNotReturned(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	sender := &recordingSender{sendFn: func([]domain.AnalyticsEvent) error { return errors.New("offline") }}
	m, _ := NewManager(sender, WithLogger(zap.New(core)))

	runAndClose(t, m, func() {
		m.FormSubmit("login")
	})

	if logs.FilterMessage("failed to send analytics events").Len() == 0 {
		t.Fatal("expected send failure warning")
	}
}

func TestManagerRunFlushesOnCancel(t *testing.T) {
	t.Parallel()

	sender := &recordingSender{}
	m, _ := NewManager(sender)
	m.PageView("/", "")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if got := len(sender.Names()); got != 2 {
		t.Fatalf("flushed events = %d, want 2", got)
	}
}

func TestHTTPSenderPostsBatch(t *testing.T) {
	t.Parallel()

	var got ingestRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != IngestPath {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	sender, err := NewHTTPSender(server.URL+"/", time.Second)
	if err != nil {
		t.Fatalf("NewHTTPSender() error = %v", err)
	}

	events := []domain.AnalyticsEvent{{Name: domain.EventPageView, SessionID: "s-1", Page: "/"}}
	if err := sender.Send(context.Background(), events); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if len(got.Events) != 1 || got.Events[0].SessionID != "s-1" {
		t.Fatalf("ingested = %+v", got)
	}
}

func TestHTTPSenderReportsErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	sender, _ := NewHTTPSender(server.URL, time.Second)
	err := sender.Send(context.Background(), []domain.AnalyticsEvent{{Name: domain.EventClick}})
	if err == nil {
		t.Fatal("Send() expected error for 503")
	}
}
