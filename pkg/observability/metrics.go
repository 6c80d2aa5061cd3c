package observability

import (
	"errors"
	"time"

	"github.com/aretw0/magnetrade/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "magnetrade"

// Metrics holds the collectors recorded by the service.
type Metrics struct {
	compilations  *prometheus.CounterVec
	workflows     prometheus.Counter
	evaluations   *prometheus.CounterVec
	evalDuration  prometheus.Histogram
	bindings      *prometheus.CounterVec
	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.NewRegistry() in tests to avoid global state.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		compilations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "compilations_total",
				Help:      "Total number of graph compilations by outcome",
			},
			[]string{"outcome"},
		),
		workflows: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "workflows_extracted_total",
				Help:      "Total number of workflows extracted from graphs",
			},
		),
		evaluations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of workflow evaluations by outcome",
			},
			[]string{"outcome"},
		),
		evalDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Round trip duration of execution service calls",
				Buckets:   prometheus.DefBuckets,
			},
		),
		bindings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "result_bindings_total",
				Help:      "Condition nodes bound or missed when applying results",
			},
			[]string{"outcome"},
		),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"route", "method", "code"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Strategy store operations by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "store_operation_duration_seconds",
				Help:      "Duration of strategy store operations",
				Buckets:   []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"op"},
		),
	}
	reg.MustRegister(
		m.compilations,
		m.workflows,
		m.evaluations,
		m.evalDuration,
		m.bindings,
		m.httpRequests,
		m.httpDuration,
		m.storeOps,
		m.storeDuration,
	)
	return m
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ObserveCompilation records one compilation and the workflows it produced.
func (m *Metrics) ObserveCompilation(workflows int, err error) {
	if m == nil {
		return
	}
	m.compilations.WithLabelValues(outcome(err)).Inc()
	m.workflows.Add(float64(workflows))
}

// ObserveEvaluation records one execution service round trip.
func (m *Metrics) ObserveEvaluation(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.evaluations.WithLabelValues(outcome(err)).Inc()
	m.evalDuration.Observe(d.Seconds())
}

// ObserveBinding records bound and missed Condition nodes.
func (m *Metrics) ObserveBinding(bound, missed int) {
	if m == nil {
		return
	}
	m.bindings.WithLabelValues("bound").Add(float64(bound))
	m.bindings.WithLabelValues("missed").Add(float64(missed))
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(route, method, code string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(route, method, code).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

// ObserveStoreOperation records one strategy store call.
// A missing strategy counts as "not_found" rather than an error.
func (m *Metrics) ObserveStoreOperation(op string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := outcome(err)
	if errors.Is(err, domain.ErrStrategyNotFound) {
		result = "not_found"
	}
	m.storeOps.WithLabelValues(op, result).Inc()
	m.storeDuration.WithLabelValues(op).Observe(d.Seconds())
}
