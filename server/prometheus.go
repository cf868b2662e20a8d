package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/logger"
	metricsconfig "github.com/ctvbid/ctvbid/metrics/config"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const prometheusPath = "/metrics"

// newPrometheusServer exposes the auction and DSP registry for scraping. Every other path is a 404.
func newPrometheusServer(cfg *config.Configuration, engine *metricsconfig.DetailedMetricsEngine) (*http.Server, error) {
	if engine == nil || engine.PrometheusMetrics == nil {
		return nil, errors.New("metrics.prometheus.port is set but no Prometheus metrics engine was built")
	}

	mux := http.NewServeMux()
	mux.Handle(prometheusPath, promhttp.HandlerFor(engine.PrometheusMetrics.Registry, promhttp.HandlerOpts{
		ErrorLog:            prometheusErrorLog{},
		ErrorHandling:       promhttp.ContinueOnError,
		MaxRequestsInFlight: 5,
		Timeout:             cfg.Metrics.Prometheus.Timeout(),
	}))

	return &http.Server{
		Addr:    cfg.Host + ":" + strconv.Itoa(cfg.Metrics.Prometheus.Port),
		Handler: mux,
	}, nil
}

type prometheusErrorLog struct{}

func (prometheusErrorLog) Println(v ...interface{}) {
	logger.Warnf("prometheus scrape: %s", fmt.Sprint(v...))
}
