package config

import (
	"fmt"
	"strings"

	"github.com/ctvbid/ctvbid/errortypes"
	"github.com/golang/glog"
	"github.com/spf13/viper"
)

// Configuration is the static process configuration. It is loaded once at startup and
// never mutated afterwards, so it can be shared by every request without locking.
type Configuration struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	AdminPort      int    `mapstructure:"admin_port"`
	EnableGzip     bool   `mapstructure:"enable_gzip"`
	StatusResponse string `mapstructure:"status_response"`
	// VastPath is the route serving VAST documents on the main server.
	VastPath string `mapstructure:"vast_path"`

	DSP      DSP      `mapstructure:"dsp"`
	Video    Video    `mapstructure:"video"`
	Defaults Defaults `mapstructure:"defaults"`
	Metrics  Metrics  `mapstructure:"metrics"`
}

// New uses viper to get our server configurations.
func New(v *viper.Viper) (*Configuration, error) {
	var c Configuration
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("viper failed to unmarshal app config: %v", err)
	}

	if errs := c.validate(); len(errs) > 0 {
		return &c, errortypes.NewAggregateErrors("validation errors", errs)
	}

	return &c, nil
}

func (cfg *Configuration) validate() []error {
	var errs []error
	if cfg.Port <= 0 || cfg.Port > 65535 {
		errs = append(errs, fmt.Errorf("port must be in the range [1, 65535]. Got %d", cfg.Port))
	}
	if cfg.AdminPort < 0 || cfg.AdminPort > 65535 {
		errs = append(errs, fmt.Errorf("admin_port must be in the range [0, 65535]. Got %d", cfg.AdminPort))
	}
	if !strings.HasPrefix(cfg.VastPath, "/") {
		errs = append(errs, fmt.Errorf("vast_path must start with '/'. Got %q", cfg.VastPath))
	}
	errs = cfg.DSP.validate(errs)
	errs = cfg.Video.validate(errs)
	errs = cfg.Defaults.validate(errs)
	errs = cfg.Metrics.validate(errs)
	return errs
}

// SetupViper registers every default and binds environment variables.
// Env vars are named CTVBID_<KEY> with dots replaced by underscores, e.g. CTVBID_DSP_TIMEOUT_MS.
func SetupViper(v *viper.Viper, filename string) {
	if filename != "" {
		v.SetConfigName(filename)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/config")
	}

	v.SetDefault("host", "")
	v.SetDefault("port", 8000)
	v.SetDefault("admin_port", 6060)
	v.SetDefault("enable_gzip", false)
	v.SetDefault("status_response", "")
	v.SetDefault("vast_path", "/ctv/vast")

	v.SetDefault("dsp.endpoints", []string{})
	v.SetDefault("dsp.timeout_ms", 2000)
	v.SetDefault("dsp.max_retries", 2)
	v.SetDefault("dsp.backoff_base_ms", 100)
	v.SetDefault("dsp.openrtb_version", "2.5")
	v.SetDefault("dsp.max_response_bytes", 1048576)
	v.SetDefault("dsp.max_idle_conns", 100)
	v.SetDefault("dsp.max_idle_conns_per_host", 10)
	v.SetDefault("dsp.idle_conn_timeout_seconds", 60)
	v.SetDefault("dsp.pem_certs_file", "")

	v.SetDefault("video.mimes", []string{"video/mp4", "video/webm", "video/ogg"})
	v.SetDefault("video.protocols", []int{2, 3, 5, 6, 7, 8})
	v.SetDefault("video.api", []int{1, 2})
	v.SetDefault("video.linearity", 1)
	v.SetDefault("video.min_duration", 5)
	v.SetDefault("video.max_duration", 30)
	v.SetDefault("video.bid_floor", 0.5)
	v.SetDefault("video.bid_floor_cur", "USD")
	v.SetDefault("video.auction_type", 1)
	v.SetDefault("video.tmax_ms", 2000)
	v.SetDefault("video.device_type", 3)

	v.SetDefault("defaults.width", 1920)
	v.SetDefault("defaults.height", 1080)
	v.SetDefault("defaults.site_id", "default-site")
	v.SetDefault("defaults.user_agent", "Mozilla/5.0 (CTV)")
	v.SetDefault("defaults.client_ip", "127.0.0.1")
	v.SetDefault("defaults.app_name", "CTV App")
	v.SetDefault("defaults.app_bundle", "com.default.ctvapp")

	v.SetDefault("metrics.prometheus.port", 0)
	v.SetDefault("metrics.prometheus.namespace", "ctvbid")
	v.SetDefault("metrics.prometheus.subsystem", "")
	v.SetDefault("metrics.prometheus.timeout_ms", 10000)
	v.SetDefault("metrics.influxdb.host", "")
	v.SetDefault("metrics.influxdb.database", "")
	v.SetDefault("metrics.influxdb.measurement", "")
	v.SetDefault("metrics.influxdb.username", "")
	v.SetDefault("metrics.influxdb.password", "")
	v.SetDefault("metrics.influxdb.align_timestamps", false)
	v.SetDefault("metrics.influxdb.metric_send_interval", 20)

	v.SetEnvPrefix("CTVBID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if filename != "" {
		if err := v.ReadInConfig(); err != nil {
			glog.Warningf("Viper failed to read config file %s: %v. Continuing with defaults and environment.", filename, err)
		}
	}
}
