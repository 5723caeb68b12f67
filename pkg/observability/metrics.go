package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application. Each collector
// owns its registry so tests can create as many as they like.
type Collector struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Bus metrics
	Commands        *prometheus.CounterVec
	CommandDuration *prometheus.HistogramVec
	Queries         *prometheus.CounterVec
	QueryDuration   *prometheus.HistogramVec

	// Store metrics
	StoreOperations *prometheus.CounterVec
	StoreDuration   *prometheus.HistogramVec

	// Directory
	DirectoryMembers prometheus.Gauge
}

// NewCollector creates a new metrics collector with the given namespace
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commands_total",
				Help:      "Commands dispatched, by outcome",
			},
			[]string{"command", "status"},
		),
		CommandDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "command_duration_seconds",
				Help:      "Command handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"command"},
		),
		Queries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "queries_total",
				Help:      "Queries answered, by outcome",
			},
			[]string{"query", "status"},
		),
		QueryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "query_duration_seconds",
				Help:      "Query handling duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"query"},
		),
		StoreOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Total number of record store operations",
			},
			[]string{"operation", "status"},
		),
		StoreDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Record store operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		DirectoryMembers: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "directory_members",
				Help:      "Members currently held in the directory",
			},
		),
	}

	registry.MustRegister(
		c.HTTPRequests,
		c.HTTPDuration,
		c.Commands,
		c.CommandDuration,
		c.Queries,
		c.QueryDuration,
		c.StoreOperations,
		c.StoreDuration,
		c.DirectoryMembers,
	)

	return c
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one HTTP request.
func (c *Collector) ObserveHTTP(method, route string, status int, duration time.Duration) {
	c.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.HTTPDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveCommand records one command.
func (c *Collector) ObserveCommand(name string, duration time.Duration, err error) {
	c.Commands.WithLabelValues(name, outcome(err)).Inc()
	c.CommandDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// ObserveQuery records one query.
func (c *Collector) ObserveQuery(name string, duration time.Duration, err error) {
	c.Queries.WithLabelValues(name, outcome(err)).Inc()
	c.QueryDuration.WithLabelValues(name).Observe(duration.Seconds())
}

// ObserveStore records one store round trip.
func (c *Collector) ObserveStore(operation string, duration time.Duration, err error) {
	c.StoreOperations.WithLabelValues(operation, outcome(err)).Inc()
	c.StoreDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// SetDirectorySize records how many members the directory holds.
func (c *Collector) SetDirectorySize(n int) {
	c.DirectoryMembers.Set(float64(n))
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
