// Package metrics owns the Prometheus collectors of the service.
package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "exportdocs"

type Metrics struct {
	registry *prometheus.Registry

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	statusTransitions *prometheus.CounterVec
	publishFailures   prometheus.Counter
	qrCodesGenerated  *prometheus.CounterVec
}

// New registers every collector on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests processed.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latencies in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),

		statusTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shipments",
			Name:      "status_transitions_total",
			Help:      "Committed shipment status transitions.",
		}, []string{"from", "to"}),
		publishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "shipments",
			Name:      "event_publish_failures_total",
			Help:      "Status change events that could not be delivered.",
		}),
		qrCodesGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "qrcode",
			Name:      "generated_total",
			Help:      "QR codes generated, by trigger.",
		}, []string{"trigger"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpInFlight,
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.statusTransitions,
		m.publishFailures,
		m.qrCodesGenerated,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TrackRequest marks a request in flight and returns the function that
// records its outcome.
func (m *Metrics) TrackRequest(method, route string) func(status int) {
	m.httpInFlight.Inc()
	start := time.Now()

	return func(status int) {
		m.httpInFlight.Dec()
		labels := prometheus.Labels{"method": method, "route": route, "status": strconv.Itoa(status)}
		m.httpRequestsTotal.With(labels).Inc()
		m.httpRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) QRCodeGenerated(trigger string) {
	m.qrCodesGenerated.WithLabelValues(trigger).Inc()
}

// CountingPublisher counts every committed transition before handing the
// event to next. Delivery failures are counted and returned unchanged.
type CountingPublisher struct {
	next    ports.EventPublisher
	metrics *Metrics
}

func (m *Metrics) CountingPublisher(next ports.EventPublisher) CountingPublisher {
	return CountingPublisher{next: next, metrics: m}
}

func (p CountingPublisher) Publish(ctx context.Context, event shipment.StatusChangedEvent) error {
	p.metrics.statusTransitions.WithLabelValues(event.OldStatus.String(), event.NewStatus.String()).Inc()

	if err := p.next.Publish(ctx, event); err != nil {
		p.metrics.publishFailures.Inc()
		return err
	}
	return nil
}
