package config

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
)

// Video holds the fixed fields copied verbatim into every outbound impression.
type Video struct {
	MIMEs       []string `mapstructure:"mimes"`
	Protocols   []int    `mapstructure:"protocols"`
	API         []int    `mapstructure:"api"`
	Linearity   int      `mapstructure:"linearity"`
	MinDuration int      `mapstructure:"min_duration"`
	MaxDuration int      `mapstructure:"max_duration"`
	BidFloor    float64  `mapstructure:"bid_floor"`
	BidFloorCur string   `mapstructure:"bid_floor_cur"`
	AuctionType int      `mapstructure:"auction_type"`
	TMaxMs      int      `mapstructure:"tmax_ms"`
	DeviceType  int      `mapstructure:"device_type"`
}

func (cfg Video) validate(errs []error) []error {
	if len(cfg.MIMEs) == 0 {
		errs = append(errs, fmt.Errorf("video.mimes must list at least one MIME type"))
	}
	if cfg.MinDuration < 0 || cfg.MaxDuration < cfg.MinDuration {
		errs = append(errs, fmt.Errorf("video.min_duration (%d) and video.max_duration (%d) must satisfy 0 <= min <= max", cfg.MinDuration, cfg.MaxDuration))
	}
	if cfg.BidFloor < 0 {
		errs = append(errs, fmt.Errorf("video.bid_floor must not be negative. Got %f", cfg.BidFloor))
	}
	if cfg.TMaxMs <= 0 {
		errs = append(errs, fmt.Errorf("video.tmax_ms must be positive. Got %d", cfg.TMaxMs))
	}
	return errs
}

// Defaults are the values the sanitizer substitutes for missing or unusable caller input.
type Defaults struct {
	Width     int    `mapstructure:"width"`
	Height    int    `mapstructure:"height"`
	SiteID    string `mapstructure:"site_id"`
	UserAgent string `mapstructure:"user_agent"`
	ClientIP  string `mapstructure:"client_ip"`
	AppName   string `mapstructure:"app_name"`
	AppBundle string `mapstructure:"app_bundle"`
}

// The sanitizer returns defaults without filtering them, so they must already satisfy the
// charsets it enforces on caller input.
var (
	defaultSiteIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	defaultAppBundlePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
	defaultAppNamePattern   = regexp.MustCompile(`^[\w\s.-]+$`)
	defaultMarkupPattern    = regexp.MustCompile(`<[^>]*>`)
)

const (
	maxDefaultUserAgentLen = 255
	maxDefaultAppNameLen   = 100
)

func (cfg Defaults) validate(errs []error) []error {
	if cfg.Width < 1 || cfg.Width > 3840 {
		errs = append(errs, fmt.Errorf("defaults.width must be in the range [1, 3840]. Got %d", cfg.Width))
	}
	if cfg.Height < 1 || cfg.Height > 2160 {
		errs = append(errs, fmt.Errorf("defaults.height must be in the range [1, 2160]. Got %d", cfg.Height))
	}
	if !govalidator.IsIP(cfg.ClientIP) {
		errs = append(errs, fmt.Errorf("defaults.client_ip must be an IP literal. Got %q", cfg.ClientIP))
	}
	if !defaultSiteIDPattern.MatchString(cfg.SiteID) {
		errs = append(errs, fmt.Errorf("defaults.site_id must be non-empty and contain only [A-Za-z0-9_-]. Got %q", cfg.SiteID))
	}
	if !defaultAppBundlePattern.MatchString(cfg.AppBundle) {
		errs = append(errs, fmt.Errorf("defaults.app_bundle must be non-empty and contain only [A-Za-z0-9._-]. Got %q", cfg.AppBundle))
	}
	if name := strings.TrimSpace(cfg.AppName); name != cfg.AppName || !defaultAppNamePattern.MatchString(name) || utf8.RuneCountInString(name) > maxDefaultAppNameLen {
		errs = append(errs, fmt.Errorf("defaults.app_name must be at most %d word, space, '.' or '-' characters without surrounding spaces. Got %q", maxDefaultAppNameLen, cfg.AppName))
	}
	if !validDefaultUserAgent(cfg.UserAgent) {
		errs = append(errs, fmt.Errorf("defaults.user_agent must be non-empty, at most %d characters, without markup or control characters. Got %q", maxDefaultUserAgentLen, cfg.UserAgent))
	}
	return errs
}

func validDefaultUserAgent(ua string) bool {
	return ua != "" &&
		strings.TrimSpace(ua) == ua &&
		utf8.RuneCountInString(ua) <= maxDefaultUserAgentLen &&
		!defaultMarkupPattern.MatchString(ua) &&
		govalidator.StripLow(ua, false) == ua
}
