package prometheusmetrics

import (
	"time"

	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics defines the Prometheus metrics backing the MetricsEngine implementation.
type Metrics struct {
	Registry *prometheus.Registry

	// General Metrics
	connectionsClosed prometheus.Counter
	connectionsError  *prometheus.CounterVec
	connectionsOpened prometheus.Counter
	requests          *prometheus.CounterVec
	requestsTimer     *prometheus.HistogramVec
	dspFailover       prometheus.Histogram
	winningPrices     prometheus.Histogram

	// DSP Metrics
	dspRequests      *prometheus.CounterVec
	dspRequestsTimer *prometheus.HistogramVec
	dspRetries       *prometheus.CounterVec
}

const (
	connectionErrorLabel = "connection_error"
	dspLabel             = "dsp"
	outcomeLabel         = "outcome"
	requestStatusLabel   = "request_status"
)

const (
	connectionAcceptError = "accept"
	connectionCloseError  = "close"
)

// NewMetrics initializes a new Prometheus metrics instance with preloaded label values.
func NewMetrics(cfg config.PrometheusMetrics, dsps []string) *Metrics {
	standardTimeBuckets := []float64{0.05, 0.1, 0.15, 0.20, 0.25, 0.3, 0.4, 0.5, 0.75, 1, 2, 5}
	dspTimeBuckets := []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5}
	failoverBuckets := []float64{1, 2, 3, 4, 5, 8}
	priceBuckets := []float64{0.25, 0.5, 1, 2, 3, 5, 8, 10, 15, 20, 30, 50}

	metrics := Metrics{}
	metrics.Registry = prometheus.NewRegistry()

	metrics.connectionsClosed = newCounterWithoutLabels(cfg, metrics.Registry,
		"connections_closed",
		"Count of successful connections closed to the server.")

	metrics.connectionsError = newCounter(cfg, metrics.Registry,
		"connections_error",
		"Count of errors for connection open and close attempts to the server labeled by type.",
		[]string{connectionErrorLabel})

	metrics.connectionsOpened = newCounterWithoutLabels(cfg, metrics.Registry,
		"connections_opened",
		"Count of successful connections opened to the server.")

	metrics.requests = newCounter(cfg, metrics.Registry,
		"requests",
		"Count of total VAST requests to the server labeled by outcome.",
		[]string{requestStatusLabel})

	metrics.requestsTimer = newHistogramVec(cfg, metrics.Registry,
		"request_time_seconds",
		"Seconds to resolve a VAST request labeled by outcome.",
		[]string{requestStatusLabel},
		standardTimeBuckets)

	metrics.dspFailover = newHistogram(cfg, metrics.Registry,
		"dsp_attempts_per_request",
		"Number of DSP endpoints tried before a usable response or exhaustion.",
		failoverBuckets)

	metrics.winningPrices = newHistogram(cfg, metrics.Registry,
		"winning_price",
		"Price of the bid selected for each VAST response.",
		priceBuckets)

	metrics.dspRequests = newCounter(cfg, metrics.Registry,
		"dsp_requests",
		"Count of DSP attempts labeled by DSP host and outcome.",
		[]string{dspLabel, outcomeLabel})

	metrics.dspRequestsTimer = newHistogramVec(cfg, metrics.Registry,
		"dsp_request_time_seconds",
		"Seconds spent on a single DSP attempt labeled by DSP host.",
		[]string{dspLabel},
		dspTimeBuckets)

	metrics.dspRetries = newCounter(cfg, metrics.Registry,
		"dsp_retries",
		"Count of DSP retries labeled by DSP host.",
		[]string{dspLabel})

	preloadLabelValues(&metrics, dsps)

	return &metrics
}

func newCounter(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string) *prometheus.CounterVec {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounterVec(opts, labels)
	registry.MustRegister(counter)
	return counter
}

func newCounterWithoutLabels(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string) prometheus.Counter {
	opts := prometheus.CounterOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
	}
	counter := prometheus.NewCounter(opts)
	registry.MustRegister(counter)
	return counter
}

func newHistogramVec(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogramVec(opts, labels)
	registry.MustRegister(histogram)
	return histogram
}

func newHistogram(cfg config.PrometheusMetrics, registry *prometheus.Registry, name, help string, buckets []float64) prometheus.Histogram {
	opts := prometheus.HistogramOpts{
		Namespace: cfg.Namespace,
		Subsystem: cfg.Subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}
	histogram := prometheus.NewHistogram(opts)
	registry.MustRegister(histogram)
	return histogram
}

func preloadLabelValues(m *Metrics, dsps []string) {
	for _, e := range []string{connectionAcceptError, connectionCloseError} {
		m.connectionsError.With(prometheus.Labels{connectionErrorLabel: e})
	}
	for _, status := range metrics.RequestStatuses() {
		m.requests.With(prometheus.Labels{requestStatusLabel: string(status)})
		m.requestsTimer.With(prometheus.Labels{requestStatusLabel: string(status)})
	}
	for _, dsp := range dsps {
		for _, outcome := range metrics.DSPOutcomes() {
			m.dspRequests.With(prometheus.Labels{dspLabel: dsp, outcomeLabel: string(outcome)})
		}
		m.dspRequestsTimer.With(prometheus.Labels{dspLabel: dsp})
		m.dspRetries.With(prometheus.Labels{dspLabel: dsp})
	}
}

func (m *Metrics) RecordConnectionAccept(success bool) {
	if success {
		m.connectionsOpened.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionAcceptError,
		}).Inc()
	}
}

func (m *Metrics) RecordConnectionClose(success bool) {
	if success {
		m.connectionsClosed.Inc()
	} else {
		m.connectionsError.With(prometheus.Labels{
			connectionErrorLabel: connectionCloseError,
		}).Inc()
	}
}

func (m *Metrics) RecordRequest(labels metrics.Labels) {
	m.requests.With(prometheus.Labels{
		requestStatusLabel: string(labels.RequestStatus),
	}).Inc()
}

func (m *Metrics) RecordRequestTime(labels metrics.Labels, length time.Duration) {
	m.requestsTimer.With(prometheus.Labels{
		requestStatusLabel: string(labels.RequestStatus),
	}).Observe(length.Seconds())
}

func (m *Metrics) RecordDSPFailover(attempts int) {
	m.dspFailover.Observe(float64(attempts))
}

func (m *Metrics) RecordDSPRequest(labels metrics.DSPLabels) {
	m.dspRequests.With(prometheus.Labels{
		dspLabel:     labels.DSP,
		outcomeLabel: string(labels.Outcome),
	}).Inc()
}

func (m *Metrics) RecordDSPTime(dsp string, length time.Duration) {
	m.dspRequestsTimer.With(prometheus.Labels{
		dspLabel: dsp,
	}).Observe(length.Seconds())
}

func (m *Metrics) RecordDSPRetry(dsp string) {
	m.dspRetries.With(prometheus.Labels{
		dspLabel: dsp,
	}).Inc()
}

func (m *Metrics) RecordWinningPrice(price float64) {
	m.winningPrices.Observe(price)
}
