package config

import (
	"fmt"
	"time"
)

type Metrics struct {
	Prometheus PrometheusMetrics `mapstructure:"prometheus"`
	Influxdb   InfluxMetrics     `mapstructure:"influxdb"`
}

func (cfg Metrics) validate(errs []error) []error {
	if cfg.Prometheus.Port < 0 || cfg.Prometheus.Port > 65535 {
		errs = append(errs, fmt.Errorf("metrics.prometheus.port must be in the range [0, 65535]. Got %d", cfg.Prometheus.Port))
	}
	if cfg.Influxdb.Host != "" && cfg.Influxdb.MetricSendInterval <= 0 {
		errs = append(errs, fmt.Errorf("metrics.influxdb.metric_send_interval must be positive when influxdb is enabled"))
	}
	return errs
}

type PrometheusMetrics struct {
	Port             int    `mapstructure:"port"`
	Namespace        string `mapstructure:"namespace"`
	Subsystem        string `mapstructure:"subsystem"`
	TimeoutMillisRaw int    `mapstructure:"timeout_ms"`
}

func (cfg *PrometheusMetrics) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMillisRaw) * time.Millisecond
}

type InfluxMetrics struct {
	Host               string `mapstructure:"host"`
	Database           string `mapstructure:"database"`
	Measurement        string `mapstructure:"measurement"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	AlignTimestamps    bool   `mapstructure:"align_timestamps"`
	MetricSendInterval int    `mapstructure:"metric_send_interval"`
}
