package sanitizer

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/asaskevich/govalidator"
	"github.com/ctvbid/ctvbid/config"
)

// Query parameter names accepted by the VAST endpoint.
const (
	ParamWidth     = "width"
	ParamHeight    = "height"
	ParamSiteID    = "sid"
	ParamUserAgent = "ua"
	ParamClientIP  = "uip"
	ParamAppName   = "app_name"
	ParamAppBundle = "app_bundle"
)

const (
	MaxWidth        = 3840
	MaxHeight       = 2160
	MaxUserAgentLen = 255
	MaxAppNameLen   = 100
)

var (
	siteIDDisallowed    = regexp.MustCompile(`[^A-Za-z0-9_-]`)
	appBundleDisallowed = regexp.MustCompile(`[^A-Za-z0-9._-]`)
	appNameDisallowed   = regexp.MustCompile(`[^\w\s.-]`)
	markup              = regexp.MustCompile(`<[^>]*>`)
)

// RequestParameters is the bounded, safe parameter set built from caller input.
// Every field is populated; nothing outside a field's charset survives sanitization.
type RequestParameters struct {
	Width     int
	Height    int
	SiteID    string
	UserAgent string
	ClientIP  string
	AppName   string
	AppBundle string
}

// Sanitizer corrects caller input. It never fails: invalid, missing or out of range values
// are replaced by the configured defaults or clamped into range.
type Sanitizer struct {
	defaults config.Defaults
}

func New(defaults config.Defaults) *Sanitizer {
	return &Sanitizer{defaults: defaults}
}

// FromQuery flattens a query string into the raw parameter mapping, keeping the first value of each key.
func FromQuery(values url.Values) map[string]string {
	raw := make(map[string]string, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			raw[key] = vals[0]
		}
	}
	return raw
}

func (s *Sanitizer) Sanitize(raw map[string]string) RequestParameters {
	return RequestParameters{
		Width:     s.dimension(raw[ParamWidth], s.defaults.Width, MaxWidth),
		Height:    s.dimension(raw[ParamHeight], s.defaults.Height, MaxHeight),
		SiteID:    filterOrDefault(raw[ParamSiteID], siteIDDisallowed, s.defaults.SiteID),
		UserAgent: s.userAgent(raw[ParamUserAgent]),
		ClientIP:  s.clientIP(raw[ParamClientIP]),
		AppName:   s.appName(raw[ParamAppName]),
		AppBundle: filterOrDefault(raw[ParamAppBundle], appBundleDisallowed, s.defaults.AppBundle),
	}
}

// dimension clamps after defaulting, so a misconfigured default can't escape the range either.
func (s *Sanitizer) dimension(value string, def, limit int) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if errors.Is(err, strconv.ErrRange) && n > 0 {
		return limit
	}
	if err != nil || n <= 0 {
		n = def
	}
	return clamp(n, 1, limit)
}

func (s *Sanitizer) userAgent(value string) string {
	ua := strings.TrimSpace(govalidator.StripLow(markup.ReplaceAllString(value, ""), false))
	ua = truncate(ua, MaxUserAgentLen)
	if ua == "" {
		return s.defaults.UserAgent
	}
	return ua
}

func (s *Sanitizer) clientIP(value string) string {
	ip := strings.TrimSpace(value)
	if govalidator.IsIP(ip) {
		return ip
	}
	return s.defaults.ClientIP
}

func (s *Sanitizer) appName(value string) string {
	name := strings.TrimSpace(truncate(appNameDisallowed.ReplaceAllString(value, ""), MaxAppNameLen))
	if name == "" {
		return s.defaults.AppName
	}
	return name
}

func filterOrDefault(value string, disallowed *regexp.Regexp, def string) string {
	if filtered := disallowed.ReplaceAllString(value, ""); filtered != "" {
		return filtered
	}
	return def
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// truncate cuts on rune boundaries so multi-byte characters are never split.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
