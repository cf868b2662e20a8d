package config

import (
	"fmt"
	"net/url"
	"time"
)

// DSP holds the demand-side platforms the server forwards bid requests to, in priority order,
// plus the transport bounds applied to every outbound call.
type DSP struct {
	Endpoints      []string `mapstructure:"endpoints"`
	TimeoutMs      int      `mapstructure:"timeout_ms"`
	MaxRetries     int      `mapstructure:"max_retries"`
	BackoffBaseMs  int      `mapstructure:"backoff_base_ms"`
	OpenRTBVersion string   `mapstructure:"openrtb_version"`

	// MaxResponseBytes bounds how much of a DSP response body is read.
	MaxResponseBytes int64 `mapstructure:"max_response_bytes"`

	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost    int `mapstructure:"max_idle_conns_per_host"`
	IdleConnTimeoutSeconds int `mapstructure:"idle_conn_timeout_seconds"`

	// PemCertsFile adds trusted root certificates for DSPs on private CAs.
	PemCertsFile string `mapstructure:"pem_certs_file"`
}

// Timeout is the deadline applied to a single outbound attempt.
func (cfg DSP) Timeout() time.Duration {
	return time.Duration(cfg.TimeoutMs) * time.Millisecond
}

// BackoffBase is the sleep before the first retry. Each later retry doubles it.
func (cfg DSP) BackoffBase() time.Duration {
	return time.Duration(cfg.BackoffBaseMs) * time.Millisecond
}

func (cfg DSP) validate(errs []error) []error {
	if len(cfg.Endpoints) == 0 {
		errs = append(errs, fmt.Errorf("dsp.endpoints must list at least one DSP endpoint"))
	}
	for i, endpoint := range cfg.Endpoints {
		u, err := url.Parse(endpoint)
		if err != nil {
			errs = append(errs, fmt.Errorf("dsp.endpoints[%d] is not a valid URL: %v", i, err))
			continue
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("dsp.endpoints[%d] must be an absolute http(s) URL. Got %q", i, endpoint))
		}
	}
	if cfg.TimeoutMs <= 0 {
		errs = append(errs, fmt.Errorf("dsp.timeout_ms must be positive. Got %d", cfg.TimeoutMs))
	}
	if cfg.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("dsp.max_retries must not be negative. Got %d", cfg.MaxRetries))
	}
	if cfg.BackoffBaseMs < 0 {
		errs = append(errs, fmt.Errorf("dsp.backoff_base_ms must not be negative. Got %d", cfg.BackoffBaseMs))
	}
	if cfg.MaxResponseBytes <= 0 {
		errs = append(errs, fmt.Errorf("dsp.max_response_bytes must be positive. Got %d", cfg.MaxResponseBytes))
	}
	if cfg.OpenRTBVersion == "" {
		errs = append(errs, fmt.Errorf("dsp.openrtb_version must not be empty"))
	}
	return errs
}
