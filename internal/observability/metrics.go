package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics stores Prometheus collectors for the API client, analytics,
// notifications and the mock backend.
type Metrics struct {
	registry *prometheus.Registry

	apiRequestsTotal      *prometheus.CounterVec
	apiRequestDuration    *prometheus.HistogramVec
	analyticsEventsTotal  *prometheus.CounterVec
	notificationsReceived *prometheus.CounterVec
	notificationsUnread   prometheus.Gauge
	serverRequestsTotal   *prometheus.CounterVec
	serverRequestDuration *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		apiRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ustamapp",
				Name:      "api_requests_total",
				Help:      "Total number of backend API calls by method, endpoint, and result code.",
			},
			[]string{"method", "endpoint", "code"},
		),
		apiRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ustamapp",
				Name:      "api_request_duration_seconds",
				Help:      "Backend API call duration in seconds by method and endpoint.",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
			[]string{"method", "endpoint"},
		),
		analyticsEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ustamapp",
				Name:      "analytics_events_total",
				Help:      "Analytics events by name and outcome (sent, dropped, failed).",
			},
			[]string{"event", "result"},
		),
		notificationsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ustamapp",
				Name:      "notifications_received_total",
				Help:      "Notifications added to the session by type and source.",
			},
			[]string{"type", "source"},
		),
		notificationsUnread: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "ustamapp",
				Name:      "notifications_unread",
				Help:      "Current number of unread notifications in the session.",
			},
		),
		serverRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "ustamapp",
				Name:      "mockapi_http_requests_total",
				Help:      "Total number of HTTP requests served by the mock backend.",
			},
			[]string{"method", "path", "status"},
		),
		serverRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "ustamapp",
				Name:      "mockapi_http_request_duration_seconds",
				Help:      "Mock backend request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequestsTotal,
		m.apiRequestDuration,
		m.analyticsEventsTotal,
		m.notificationsReceived,
		m.notificationsUnread,
		m.serverRequestsTotal,
		m.serverRequestDuration,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAPICall records one API client attempt. code is the symbolic error
// code, or "OK" on success.
func (m *Metrics) ObserveAPICall(method string, endpoint string, code string, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := normalizeMethod(method)
	endpointLabel := normalizeLabel(endpoint, "unknown")
	codeLabel := strings.ToUpper(strings.TrimSpace(code))
	if codeLabel == "" {
		codeLabel = "OK"
	}

	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}

	m.apiRequestsTotal.WithLabelValues(methodLabel, endpointLabel, codeLabel).Inc()
	m.apiRequestDuration.WithLabelValues(methodLabel, endpointLabel).Observe(seconds)
}

func (m *Metrics) IncAnalyticsEvent(event string, result string) {
	if m == nil {
		return
	}
	m.analyticsEventsTotal.WithLabelValues(normalizeLabel(event, "unknown"), normalizeLabel(result, "unknown")).Inc()
}

func (m *Metrics) IncNotificationReceived(notificationType string, source string) {
	if m == nil {
		return
	}
	m.notificationsReceived.WithLabelValues(normalizeLabel(notificationType, "unknown"), normalizeLabel(source, "local")).Inc()
}

func (m *Metrics) SetUnreadNotifications(count int) {
	if m == nil {
		return
	}
	m.notificationsUnread.Set(float64(count))
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordServerRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) recordServerRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := normalizeMethod(method)
	pathLabel := normalizeLabel(path, "unmatched")

	m.serverRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.serverRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeMethod(method string) string {
	normalized := strings.ToUpper(strings.TrimSpace(method))
	if normalized == "" {
		return "UNKNOWN"
	}
	return normalized
}

func normalizeLabel(value string, fallback string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return fallback
	}
	return normalized
}
