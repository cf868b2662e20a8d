package metrics

import (
	"fmt"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
)

// Metrics is the go-metrics backed MetricsEngine. It is reported to InfluxDB when that is configured.
type Metrics struct {
	MetricsRegistry   metrics.Registry
	RequestTimer      metrics.Timer
	RequestStatuses   map[RequestStatus]metrics.Meter
	FailoverHistogram metrics.Histogram
	PriceHistogram    metrics.Histogram

	ConnectionCounter          metrics.Counter
	ConnectionAcceptErrorMeter metrics.Meter
	ConnectionCloseErrorMeter  metrics.Meter

	// DSP metrics are keyed by endpoint host. Hosts missing at construction are registered on first use.
	DSPMetrics      map[string]*DSPMetrics
	dspMetricsMutex sync.RWMutex
}

// DSPMetrics houses the metrics for a particular DSP
type DSPMetrics struct {
	RequestMeter  metrics.Meter
	RetryMeter    metrics.Meter
	RequestTimer  metrics.Timer
	OutcomeMeters map[DSPOutcome]metrics.Meter
}

// NewBlankMetrics creates a new Metrics object with all blank metrics object. This may also be useful for
// testing routines to ensure that no metrics are written anywhere.
func NewBlankMetrics(registry metrics.Registry, dsps []string) *Metrics {
	blankMeter := &metrics.NilMeter{}
	newMetrics := &Metrics{
		MetricsRegistry:   registry,
		RequestTimer:      &metrics.NilTimer{},
		RequestStatuses:   make(map[RequestStatus]metrics.Meter),
		FailoverHistogram: &metrics.NilHistogram{},
		PriceHistogram:    &metrics.NilHistogram{},
		DSPMetrics:        make(map[string]*DSPMetrics, len(dsps)),

		ConnectionCounter:          metrics.NilCounter{},
		ConnectionAcceptErrorMeter: blankMeter,
		ConnectionCloseErrorMeter:  blankMeter,
	}
	for _, s := range RequestStatuses() {
		newMetrics.RequestStatuses[s] = blankMeter
	}
	for _, d := range dsps {
		newMetrics.DSPMetrics[d] = makeBlankDSPMetrics()
	}
	return newMetrics
}

// NewMetrics creates a new Metrics object with needed metrics defined.
func NewMetrics(registry metrics.Registry, dsps []string) *Metrics {
	newMetrics := NewBlankMetrics(registry, dsps)
	newMetrics.RequestTimer = metrics.GetOrRegisterTimer("request_time", registry)
	newMetrics.FailoverHistogram = metrics.GetOrRegisterHistogram("dsp_attempts_per_request", registry, metrics.NewExpDecaySample(1028, 0.015))
	newMetrics.PriceHistogram = metrics.GetOrRegisterHistogram("winning_prices", registry, metrics.NewExpDecaySample(1028, 0.015))
	newMetrics.ConnectionCounter = metrics.GetOrRegisterCounter("active_connections", registry)
	newMetrics.ConnectionAcceptErrorMeter = metrics.GetOrRegisterMeter("connection_accept_errors", registry)
	newMetrics.ConnectionCloseErrorMeter = metrics.GetOrRegisterMeter("connection_close_errors", registry)
	for stat := range newMetrics.RequestStatuses {
		newMetrics.RequestStatuses[stat] = metrics.GetOrRegisterMeter("requests."+string(stat), registry)
	}
	for d, dm := range newMetrics.DSPMetrics {
		registerDSPMetrics(registry, d, dm)
	}
	return newMetrics
}

func makeBlankDSPMetrics() *DSPMetrics {
	blankMeter := &metrics.NilMeter{}
	dm := &DSPMetrics{
		RequestMeter:  blankMeter,
		RetryMeter:    blankMeter,
		RequestTimer:  &metrics.NilTimer{},
		OutcomeMeters: make(map[DSPOutcome]metrics.Meter),
	}
	for _, o := range DSPOutcomes() {
		dm.OutcomeMeters[o] = blankMeter
	}
	return dm
}

func registerDSPMetrics(registry metrics.Registry, dsp string, dm *DSPMetrics) {
	dm.RequestMeter = metrics.GetOrRegisterMeter(fmt.Sprintf("dsp.%s.requests", dsp), registry)
	dm.RetryMeter = metrics.GetOrRegisterMeter(fmt.Sprintf("dsp.%s.retries", dsp), registry)
	dm.RequestTimer = metrics.GetOrRegisterTimer(fmt.Sprintf("dsp.%s.request_time", dsp), registry)
	for o := range dm.OutcomeMeters {
		dm.OutcomeMeters[o] = metrics.GetOrRegisterMeter(fmt.Sprintf("dsp.%s.%s", dsp, o), registry)
	}
}

func (me *Metrics) getDSPMetrics(dsp string) *DSPMetrics {
	me.dspMetricsMutex.RLock()
	dm, ok := me.DSPMetrics[dsp]
	me.dspMetricsMutex.RUnlock()
	if ok {
		return dm
	}

	me.dspMetricsMutex.Lock()
	defer me.dspMetricsMutex.Unlock()

	if dm, ok = me.DSPMetrics[dsp]; ok {
		return dm
	}
	dm = makeBlankDSPMetrics()
	registerDSPMetrics(me.MetricsRegistry, dsp, dm)
	me.DSPMetrics[dsp] = dm
	return dm
}

// Implement the MetricsEngine interface

// RecordRequest implements a part of the MetricsEngine interface
func (me *Metrics) RecordRequest(labels Labels) {
	if meter, ok := me.RequestStatuses[labels.RequestStatus]; ok {
		meter.Mark(1)
	}
}

// RecordRequestTime implements a part of the MetricsEngine interface
func (me *Metrics) RecordRequestTime(labels Labels, length time.Duration) {
	me.RequestTimer.Update(length)
}

// RecordDSPFailover implements a part of the MetricsEngine interface
func (me *Metrics) RecordDSPFailover(attempts int) {
	me.FailoverHistogram.Update(int64(attempts))
}

// RecordDSPRequest implements a part of the MetricsEngine interface
func (me *Metrics) RecordDSPRequest(labels DSPLabels) {
	dm := me.getDSPMetrics(labels.DSP)
	dm.RequestMeter.Mark(1)
	if meter, ok := dm.OutcomeMeters[labels.Outcome]; ok {
		meter.Mark(1)
	}
}

// RecordDSPTime implements a part of the MetricsEngine interface
func (me *Metrics) RecordDSPTime(dsp string, length time.Duration) {
	me.getDSPMetrics(dsp).RequestTimer.Update(length)
}

// RecordDSPRetry implements a part of the MetricsEngine interface
func (me *Metrics) RecordDSPRetry(dsp string) {
	me.getDSPMetrics(dsp).RetryMeter.Mark(1)
}

// RecordWinningPrice implements a part of the MetricsEngine interface.
// go-metrics histograms are integral, so prices are stored in hundredths of a currency unit.
func (me *Metrics) RecordWinningPrice(price float64) {
	me.PriceHistogram.Update(int64(price*100 + 0.5))
}

// RecordConnectionAccept implements a part of the MetricsEngine interface
func (me *Metrics) RecordConnectionAccept(success bool) {
	if success {
		me.ConnectionCounter.Inc(1)
	} else {
		me.ConnectionAcceptErrorMeter.Mark(1)
	}
}

// RecordConnectionClose implements a part of the MetricsEngine interface
func (me *Metrics) RecordConnectionClose(success bool) {
	if success {
		me.ConnectionCounter.Dec(1)
	} else {
		me.ConnectionCloseErrorMeter.Mark(1)
	}
}
