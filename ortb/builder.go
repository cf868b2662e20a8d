package ortb

import (
	"net"

	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/sanitizer"
	"github.com/ctvbid/ctvbid/util/randomutil"
	"github.com/mssola/user_agent"
	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/xorcare/pointer"
)

// RequestBuilder assembles the OpenRTB 2.5 bid request sent to every DSP.
type RequestBuilder struct {
	video config.Video
	ids   randomutil.IDGenerator
}

func NewRequestBuilder(video config.Video, ids randomutil.IDGenerator) *RequestBuilder {
	return &RequestBuilder{video: video, ids: ids}
}

// Build generates fresh request, impression and user ids. All other fixed fields come from configuration.
// The returned request is never modified afterwards.
func (b *RequestBuilder) Build(params sanitizer.RequestParameters) *openrtb2.BidRequest {
	return &openrtb2.BidRequest{
		ID: b.ids.GenerateID(),
		Imp: []openrtb2.Imp{
			{
				ID:          b.ids.GenerateID(),
				Video:       b.buildVideo(params),
				BidFloor:    b.video.BidFloor,
				BidFloorCur: b.video.BidFloorCur,
			},
		},
		App: &openrtb2.App{
			ID:     params.SiteID,
			Name:   params.AppName,
			Bundle: params.AppBundle,
			Publisher: &openrtb2.Publisher{
				ID: params.SiteID,
			},
		},
		Device: buildDevice(params, adcom1.DeviceType(b.video.DeviceType)),
		User: &openrtb2.User{
			ID: b.ids.GenerateID(),
		},
		AT:   int64(b.video.AuctionType),
		TMax: int64(b.video.TMaxMs),
	}
}

func (b *RequestBuilder) buildVideo(params sanitizer.RequestParameters) *openrtb2.Video {
	protocols := make([]adcom1.MediaCreativeSubtype, 0, len(b.video.Protocols))
	for _, p := range b.video.Protocols {
		protocols = append(protocols, adcom1.MediaCreativeSubtype(p))
	}
	apis := make([]adcom1.APIFramework, 0, len(b.video.API))
	for _, a := range b.video.API {
		apis = append(apis, adcom1.APIFramework(a))
	}
	mimes := make([]string, len(b.video.MIMEs))
	copy(mimes, b.video.MIMEs)

	return &openrtb2.Video{
		MIMEs:       mimes,
		MinDuration: int64(b.video.MinDuration),
		MaxDuration: int64(b.video.MaxDuration),
		Protocols:   protocols,
		W:           pointer.Int64(int64(params.Width)),
		H:           pointer.Int64(int64(params.Height)),
		Linearity:   adcom1.LinearityMode(b.video.Linearity),
		API:         apis,
	}
}

// buildDevice places IPv6 literals in device.ipv6 as OpenRTB requires; everything else goes to device.ip.
func buildDevice(params sanitizer.RequestParameters, deviceType adcom1.DeviceType) *openrtb2.Device {
	device := &openrtb2.Device{
		UA:         params.UserAgent,
		DeviceType: deviceType,
	}
	if ip := net.ParseIP(params.ClientIP); ip != nil && ip.To4() == nil {
		device.IPv6 = params.ClientIP
	} else {
		device.IP = params.ClientIP
	}
	if ua := user_agent.New(params.UserAgent); ua != nil {
		device.OS = ua.OSInfo().Name
	}
	return device
}
