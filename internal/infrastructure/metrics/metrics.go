package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dayplanner/core/internal/ports"
)

// Metrics holds the Prometheus collectors on a private registry
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tasks           prometheus.Gauge
	storageWrites   *prometheus.CounterVec
}

var _ ports.PersistObserver = (*Metrics)(nil)

// New creates and registers all collectors
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		tasks: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "dayplanner_tasks",
			Help: "Number of tasks in the planner after the last write",
		}),
		storageWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dayplanner_storage_writes_total",
				Help: "Write-throughs of the task collection by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.tasks,
		m.storageWrites,
		collectors.NewGoCollector(),
	)

	return m
}

// ObservePersist records a write-through of the task collection
func (m *Metrics) ObservePersist(taskCount int, err error) {
	m.tasks.Set(float64(taskCount))
	if err != nil {
		m.storageWrites.WithLabelValues("error").Inc()
		return
	}
	m.storageWrites.WithLabelValues("ok").Inc()
}

// SetTasks sets the task gauge, used once after the planner loads
func (m *Metrics) SetTasks(n int) {
	m.tasks.Set(float64(n))
}

// Middleware counts and times every request
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}

			m.requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			m.requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
