package handler

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// MetricsHandler handles Prometheus metrics endpoint
type MetricsHandler struct {
	gatherer prometheus.Gatherer
}

var (
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "folio_http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"method", "path", "status"})

	totalRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	bookSettingsSaves = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_book_settings_saves_total",
		Help: "Book settings submissions by outcome",
	}, []string{"result"})

	peopleListRows = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "folio_people_list_rows",
		Help:    "Rows rendered per people listing page",
		Buckets: []float64{0, 1, 5, 10, 25, 50},
	})

	authFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "folio_auth_failures_total",
		Help: "Total number of failed authentication attempts",
	}, []string{"reason"})
)

// NewMetricsHandler creates a metrics handler over the default registry
func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{gatherer: prometheus.DefaultGatherer}
}

// Handler serves the registry in Prometheus text format.
func (h *MetricsHandler) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		mfs, err := h.gatherer.Gather()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Failed to gather metrics")
		}

		var sb strings.Builder
		for _, mf := range mfs {
			if _, err := expfmt.MetricFamilyToText(&sb, mf); err != nil {
				return c.Status(fiber.StatusInternalServerError).SendString("Failed to format metrics")
			}
		}

		c.Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		return c.SendString(sb.String())
	}
}

// MetricsMiddleware records HTTP metrics for each request
func MetricsMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		// fiber strings point into reused request buffers; label values are
		// retained by the registry and must be copies.
		method := strings.Clone(c.Method())
		path := strings.Clone(c.Route().Path)
		if path == "" {
			path = "__unmatched__"
		}
		status := statusClass(c.Response().StatusCode())

		totalRequests.WithLabelValues(method, path, status).Inc()
		httpDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())

		return err
	}
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// RecordBookSettingsSave counts a settings submission: saved, invalid or error.
func RecordBookSettingsSave(result string) {
	bookSettingsSaves.WithLabelValues(result).Inc()
}

// RecordPeopleListRows observes the row count of one rendered listing page.
func RecordPeopleListRows(n int) {
	peopleListRows.Observe(float64(n))
}

// RecordAuthFailure increments the failed auth counter with a reason label.
func RecordAuthFailure(reason string) {
	authFailures.WithLabelValues(reason).Inc()
}
