// Package metrics exports binding and preview activity as Prometheus
// metrics.
//
// A Collector implements bind.Observer:
//
//	reg := prometheus.NewRegistry()
//	m := metrics.New(metrics.WithRegistry(reg))
//	b := bind.New(doc, bind.WithObserver(m))
//
// Metrics collected (namespace "vbind" by default):
//   - attributes_bound_total: bindings made by SetAttribute, by mode
//   - validation_failures_total: rejected user input, by reference kind
//   - stale_handlers_total: handlers that fired for collected nodes
//   - list_changes_total: collection changes applied, by op
//   - bindings_released_total: released bindings, by reason
//   - preview_pushes_total / preview_push_bytes: rendered documents pushed
//   - preview_render_duration_seconds: time to render a push
//   - preview_clients: connected preview clients
//   - preview_client_events_total: events received from clients, by type
//   - preview_websocket_errors_total: websocket errors, by type
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/vbind/pkg/bind"
	"github.com/vango-dev/vbind/pkg/reactive"
)

// Config configures a Collector.
type Config struct {
	// Namespace is the metrics namespace (default: "vbind").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// Option configures a Collector.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the render duration buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vbind",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Collector holds the metrics. It is safe for concurrent use.
type Collector struct {
	attributesBound    *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	staleHandlers      prometheus.Counter
	listChanges        *prometheus.CounterVec
	released           *prometheus.CounterVec

	pushes         prometheus.Counter
	pushBytes      prometheus.Histogram
	renderDuration prometheus.Histogram
	clients        prometheus.Gauge
	clientEvents   *prometheus.CounterVec
	wsErrors       *prometheus.CounterVec
}

var _ bind.Observer = (*Collector)(nil)

// New registers the metrics and returns their collector. Registering twice
// with the same registry panics, as with promauto.
func New(opts ...Option) *Collector {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.Registry)

	counter := func(name, help string, labels ...string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: cfg.ConstLabels,
		}, labels)
	}

	return &Collector{
		attributesBound:    counter("attributes_bound_total", "Total number of attribute bindings by mode", "mode"),
		validationFailures: counter("validation_failures_total", "Total number of rejected control inputs by reference kind", "kind"),
		listChanges:        counter("list_changes_total", "Total number of collection changes applied to the DOM", "op"),
		released:           counter("bindings_released_total", "Total number of released bindings by reason", "reason"),
		clientEvents:       counter("preview_client_events_total", "Total number of events received from preview clients", "type"),
		wsErrors:           counter("preview_websocket_errors_total", "Total preview WebSocket errors by type", "type"),

		staleHandlers: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "stale_handlers_total",
			Help:        "Total number of handlers that fired for collected nodes",
			ConstLabels: cfg.ConstLabels,
		}),

		pushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "preview_pushes_total",
			Help:        "Total number of rendered documents pushed to preview clients",
			ConstLabels: cfg.ConstLabels,
		}),

		pushBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "preview_push_bytes",
			Help:        "Size of pushed documents in bytes",
			ConstLabels: cfg.ConstLabels,
			Buckets:     []float64{1024, 10240, 102400, 1048576}, // 1KB to 1MB
		}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "preview_render_duration_seconds",
			Help:        "Time spent rendering a document for a push",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}),

		clients: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "preview_clients",
			Help:        "Number of connected preview clients",
			ConstLabels: cfg.ConstLabels,
		}),
	}
}

// AttributeBound implements bind.Observer.
func (c *Collector) AttributeBound(mode bind.Mode) {
	c.attributesBound.WithLabelValues(mode.String()).Inc()
}

// ValidationFailed implements bind.Observer.
func (c *Collector) ValidationFailed(kind reactive.Kind) {
	c.validationFailures.WithLabelValues(kind.String()).Inc()
}

// StaleHandler implements bind.Observer.
func (c *Collector) StaleHandler() {
	c.staleHandlers.Inc()
}

// ListChange implements bind.Observer.
func (c *Collector) ListChange(op reactive.ChangeOp) {
	c.listChanges.WithLabelValues(op.String()).Inc()
}

// Released implements bind.Observer.
func (c *Collector) Released(reason string, n int) {
	if n > 0 {
		c.released.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordPush records one pushed document.
func (c *Collector) RecordPush(bytes int, render time.Duration) {
	c.pushes.Inc()
	c.pushBytes.Observe(float64(bytes))
	c.renderDuration.Observe(render.Seconds())
}

// ClientConnected records a new preview client.
func (c *Collector) ClientConnected() { c.clients.Inc() }

// ClientDisconnected records a preview client leaving.
func (c *Collector) ClientDisconnected() { c.clients.Dec() }

// RecordClientEvent records an event received from a preview client.
func (c *Collector) RecordClientEvent(eventType string) {
	c.clientEvents.WithLabelValues(eventType).Inc()
}

// RecordWebSocketError records a preview WebSocket error.
func (c *Collector) RecordWebSocketError(errorType string) {
	c.wsErrors.WithLabelValues(errorType).Inc()
}
