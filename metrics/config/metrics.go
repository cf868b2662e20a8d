package config

import (
	"time"

	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/metrics"
	prometheusmetrics "github.com/ctvbid/ctvbid/metrics/prometheus"
	"github.com/golang/glog"
	gometrics "github.com/rcrowley/go-metrics"
	influxdb "github.com/vrischmann/go-metrics-influxdb"
)

// NewMetricsEngine reads the configuration and returns the appropriate metrics engine
// for this instance.
func NewMetricsEngine(cfg *config.Configuration, dsps []string) *DetailedMetricsEngine {
	// Create a list of metrics engines to use.
	// Capacity of 2, as unlikely to have more than 2 metrics backends, and in the case
	// of 1 we won't use the list so it will be garbage collected.
	engineList := make(MultiMetricsEngine, 0, 2)
	returnEngine := DetailedMetricsEngine{}

	if cfg.Metrics.Influxdb.Host != "" {
		// Currently use go-metrics as the metrics piece for influx
		returnEngine.GoMetrics = metrics.NewMetrics(gometrics.NewPrefixedRegistry("ctvbid."), dsps)
		engineList = append(engineList, returnEngine.GoMetrics)
		// Set up the Influx logger
		interval := time.Second * time.Duration(cfg.Metrics.Influxdb.MetricSendInterval)
		go influxdb.InfluxDB(
			returnEngine.GoMetrics.MetricsRegistry, // metrics registry
			interval,                               // Configurable interval
			cfg.Metrics.Influxdb.Host,              // the InfluxDB url
			cfg.Metrics.Influxdb.Database,          // your InfluxDB database
			cfg.Metrics.Influxdb.Measurement,       // your measurement
			cfg.Metrics.Influxdb.Username,          // your InfluxDB user
			cfg.Metrics.Influxdb.Password,          // your InfluxDB password
			cfg.Metrics.Influxdb.AlignTimestamps,   // align timestamps
		)
		// Influx is not added to the engine list as goMetrics takes care of it already.
	}
	if cfg.Metrics.Prometheus.Port != 0 {
		// Set up the Prometheus metrics.
		returnEngine.PrometheusMetrics = prometheusmetrics.NewMetrics(cfg.Metrics.Prometheus, dsps)
		engineList = append(engineList, returnEngine.PrometheusMetrics)
	}

	// Now return the proper metrics engine
	if len(engineList) > 1 {
		returnEngine.MetricsEngine = &engineList
	} else if len(engineList) == 1 {
		returnEngine.MetricsEngine = engineList[0]
	} else {
		returnEngine.MetricsEngine = &NilMetricsEngine{}
		glog.Info("No metrics backend configured; metrics will not be recorded.")
	}

	return &returnEngine
}

// DetailedMetricsEngine is a MultiMetricsEngine that preserves links to the underlying metrics engines.
type DetailedMetricsEngine struct {
	metrics.MetricsEngine
	GoMetrics         *metrics.Metrics
	PrometheusMetrics *prometheusmetrics.Metrics
}

// MultiMetricsEngine logs metrics to multiple metrics databases The can be useful in transitioning
// an instance from one engine to another, you can run both in parallel to verify stats match up.
type MultiMetricsEngine []metrics.MetricsEngine

// RecordRequest across all engines
func (me *MultiMetricsEngine) RecordRequest(labels metrics.Labels) {
	for _, thisME := range *me {
		thisME.RecordRequest(labels)
	}
}

// RecordRequestTime across all engines
func (me *MultiMetricsEngine) RecordRequestTime(labels metrics.Labels, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordRequestTime(labels, length)
	}
}

// RecordDSPFailover across all engines
func (me *MultiMetricsEngine) RecordDSPFailover(attempts int) {
	for _, thisME := range *me {
		thisME.RecordDSPFailover(attempts)
	}
}

// RecordDSPRequest across all engines
func (me *MultiMetricsEngine) RecordDSPRequest(labels metrics.DSPLabels) {
	for _, thisME := range *me {
		thisME.RecordDSPRequest(labels)
	}
}

// RecordDSPTime across all engines
func (me *MultiMetricsEngine) RecordDSPTime(dsp string, length time.Duration) {
	for _, thisME := range *me {
		thisME.RecordDSPTime(dsp, length)
	}
}

// RecordDSPRetry across all engines
func (me *MultiMetricsEngine) RecordDSPRetry(dsp string) {
	for _, thisME := range *me {
		thisME.RecordDSPRetry(dsp)
	}
}

// RecordWinningPrice across all engines
func (me *MultiMetricsEngine) RecordWinningPrice(price float64) {
	for _, thisME := range *me {
		thisME.RecordWinningPrice(price)
	}
}

// RecordConnectionAccept across all engines
func (me *MultiMetricsEngine) RecordConnectionAccept(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionAccept(success)
	}
}

// RecordConnectionClose across all engines
func (me *MultiMetricsEngine) RecordConnectionClose(success bool) {
	for _, thisME := range *me {
		thisME.RecordConnectionClose(success)
	}
}

// NilMetricsEngine implements the MetricsEngine interface where no metrics are desired.
type NilMetricsEngine struct{}

// RecordRequest as a noop
func (me *NilMetricsEngine) RecordRequest(labels metrics.Labels) {
}

// RecordRequestTime as a noop
func (me *NilMetricsEngine) RecordRequestTime(labels metrics.Labels, length time.Duration) {
}

// RecordDSPFailover as a noop
func (me *NilMetricsEngine) RecordDSPFailover(attempts int) {
}

// RecordDSPRequest as a noop
func (me *NilMetricsEngine) RecordDSPRequest(labels metrics.DSPLabels) {
}

// RecordDSPTime as a noop
func (me *NilMetricsEngine) RecordDSPTime(dsp string, length time.Duration) {
}

// RecordDSPRetry as a noop
func (me *NilMetricsEngine) RecordDSPRetry(dsp string) {
}

// RecordWinningPrice as a noop
func (me *NilMetricsEngine) RecordWinningPrice(price float64) {
}

// RecordConnectionAccept as a noop
func (me *NilMetricsEngine) RecordConnectionAccept(success bool) {
}

// RecordConnectionClose as a noop
func (me *NilMetricsEngine) RecordConnectionClose(success bool) {
}
