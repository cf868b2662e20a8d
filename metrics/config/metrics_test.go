package config

import (
	"testing"
	"time"

	mainConfig "github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/metrics"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/mock"
)

// Start a simple test to insure we get valid MetricsEngines for various configurations
func TestNilMetricsEngine(t *testing.T) {
	cfg := mainConfig.Configuration{}
	testEngine := NewMetricsEngine(&cfg, []string{"dsp-a"})
	_, ok := testEngine.MetricsEngine.(*NilMetricsEngine)
	if !ok {
		t.Error("Expected a NilMetricsEngine, but didn't get it")
	}
}

func TestGoMetricsEngine(t *testing.T) {
	cfg := mainConfig.Configuration{}
	cfg.Metrics.Influxdb.Host = "localhost"
	cfg.Metrics.Influxdb.MetricSendInterval = 60
	testEngine := NewMetricsEngine(&cfg, []string{"dsp-a"})
	_, ok := testEngine.MetricsEngine.(*metrics.Metrics)
	if !ok {
		t.Error("Expected a go-metrics Metrics as MetricsEngine, but didn't get it")
	}
}

func TestPrometheusAndGoMetricsEngine(t *testing.T) {
	cfg := mainConfig.Configuration{}
	cfg.Metrics.Influxdb.Host = "localhost"
	cfg.Metrics.Influxdb.MetricSendInterval = 60
	cfg.Metrics.Prometheus.Port = 9100
	testEngine := NewMetricsEngine(&cfg, []string{"dsp-a"})
	_, ok := testEngine.MetricsEngine.(*MultiMetricsEngine)
	if !ok {
		t.Error("Expected a MultiMetricsEngine, but didn't get it")
	}
	if testEngine.PrometheusMetrics == nil || testEngine.GoMetrics == nil {
		t.Error("Expected both underlying engines to be preserved")
	}
}

// Test the multiengine
func TestMultiMetricsEngine(t *testing.T) {
	goEngine := metrics.NewMetrics(gometrics.NewPrefixedRegistry("ctvbid."), []string{"dsp-a", "dsp-b"})
	mockEngine := &metrics.MetricsEngineMock{}
	mockEngine.On("RecordRequest", mock.Anything).Return()
	mockEngine.On("RecordRequestTime", mock.Anything, mock.Anything).Return()
	mockEngine.On("RecordDSPRequest", mock.Anything).Return()
	mockEngine.On("RecordDSPTime", mock.Anything, mock.Anything).Return()
	mockEngine.On("RecordDSPRetry", mock.Anything).Return()
	mockEngine.On("RecordDSPFailover", mock.Anything).Return()
	mockEngine.On("RecordWinningPrice", mock.Anything).Return()

	engineList := make(MultiMetricsEngine, 3)
	engineList[0] = goEngine
	engineList[1] = &NilMetricsEngine{}
	engineList[2] = mockEngine
	var metricsEngine metrics.MetricsEngine
	metricsEngine = &engineList

	okLabels := metrics.Labels{RequestStatus: metrics.RequestStatusOK}
	for i := 0; i < 5; i++ {
		metricsEngine.RecordRequest(okLabels)
		metricsEngine.RecordRequestTime(okLabels, time.Millisecond*20)
		metricsEngine.RecordDSPRequest(metrics.DSPLabels{DSP: "dsp-a", Outcome: metrics.DSPOutcomeTimeout})
		metricsEngine.RecordDSPRetry("dsp-a")
		metricsEngine.RecordDSPRequest(metrics.DSPLabels{DSP: "dsp-b", Outcome: metrics.DSPOutcomeBid})
		metricsEngine.RecordDSPTime("dsp-b", time.Millisecond*20)
		metricsEngine.RecordDSPFailover(2)
		metricsEngine.RecordWinningPrice(1.34)
	}
	metricsEngine.RecordRequest(metrics.Labels{RequestStatus: metrics.RequestStatusDispatchFailure})

	VerifyMetrics(t, "RequestStatuses.OK", goEngine.RequestStatuses[metrics.RequestStatusOK].Count(), 5)
	VerifyMetrics(t, "RequestStatuses.DispatchFailure", goEngine.RequestStatuses[metrics.RequestStatusDispatchFailure].Count(), 1)
	VerifyMetrics(t, "RequestStatuses.Err", goEngine.RequestStatuses[metrics.RequestStatusErr].Count(), 0)
	VerifyMetrics(t, "RequestTimer", goEngine.RequestTimer.Count(), 5)
	VerifyMetrics(t, "DSPMetrics.dsp-a.Timeout", goEngine.DSPMetrics["dsp-a"].OutcomeMeters[metrics.DSPOutcomeTimeout].Count(), 5)
	VerifyMetrics(t, "DSPMetrics.dsp-a.Retry", goEngine.DSPMetrics["dsp-a"].RetryMeter.Count(), 5)
	VerifyMetrics(t, "DSPMetrics.dsp-b.Bid", goEngine.DSPMetrics["dsp-b"].OutcomeMeters[metrics.DSPOutcomeBid].Count(), 5)
	VerifyMetrics(t, "DSPMetrics.dsp-b.NoBid", goEngine.DSPMetrics["dsp-b"].OutcomeMeters[metrics.DSPOutcomeNoBid].Count(), 0)
	VerifyMetrics(t, "PriceHistogram", goEngine.PriceHistogram.Count(), 5)

	mockEngine.AssertNumberOfCalls(t, "RecordRequest", 6)
	mockEngine.AssertNumberOfCalls(t, "RecordDSPRequest", 10)
	mockEngine.AssertCalled(t, "RecordWinningPrice", 1.34)
}

func VerifyMetrics(t *testing.T, name string, actual int64, expected int64) {
	if expected != actual {
		t.Errorf("Error in metric %s: got %d, expected %d.", name, actual, expected)
	}
}
