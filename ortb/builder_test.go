package ortb

import (
	"strconv"
	"testing"

	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/sanitizer"
	"github.com/prebid/openrtb/v20/adcom1"
	"github.com/prebid/openrtb/v20/openrtb2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sequentialIDs hands out predictable ids so built requests can be compared field by field.
type sequentialIDs struct {
	next int
}

func (s *sequentialIDs) GenerateID() string {
	s.next++
	return "id-" + strconv.Itoa(s.next)
}

var testVideo = config.Video{
	MIMEs:       []string{"video/mp4", "video/webm"},
	Protocols:   []int{2, 3, 5, 6},
	API:         []int{1, 2},
	Linearity:   1,
	MinDuration: 5,
	MaxDuration: 30,
	BidFloor:    0.5,
	BidFloorCur: "USD",
	AuctionType: 1,
	TMaxMs:      2000,
	DeviceType:  3,
}

var testParams = sanitizer.RequestParameters{
	Width:     1280,
	Height:    720,
	SiteID:    "site-1",
	UserAgent: "Mozilla/5.0 (Linux; Android 9; SHIELD Android TV) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0 Safari/537.36",
	ClientIP:  "203.0.113.9",
	AppName:   "Example TV",
	AppBundle: "com.example.tv",
}

func TestBuild(t *testing.T) {
	builder := NewRequestBuilder(testVideo, &sequentialIDs{})

	req := builder.Build(testParams)
	require.NotNil(t, req)

	assert.Equal(t, "id-1", req.ID)
	assert.Equal(t, int64(1), req.AT)
	assert.Equal(t, int64(2000), req.TMax)

	require.Len(t, req.Imp, 1)
	imp := req.Imp[0]
	assert.Equal(t, "id-2", imp.ID)
	assert.Equal(t, 0.5, imp.BidFloor)
	assert.Equal(t, "USD", imp.BidFloorCur)

	require.NotNil(t, imp.Video)
	assert.Equal(t, []string{"video/mp4", "video/webm"}, imp.Video.MIMEs)
	assert.Equal(t, int64(5), imp.Video.MinDuration)
	assert.Equal(t, int64(30), imp.Video.MaxDuration)
	assert.Equal(t, []adcom1.MediaCreativeSubtype{2, 3, 5, 6}, imp.Video.Protocols)
	assert.Equal(t, []adcom1.APIFramework{1, 2}, imp.Video.API)
	assert.Equal(t, adcom1.LinearityMode(1), imp.Video.Linearity)
	assert.Equal(t, int64(1280), *imp.Video.W)
	assert.Equal(t, int64(720), *imp.Video.H)

	assert.Equal(t, &openrtb2.App{
		ID:        "site-1",
		Name:      "Example TV",
		Bundle:    "com.example.tv",
		Publisher: &openrtb2.Publisher{ID: "site-1"},
	}, req.App)

	require.NotNil(t, req.Device)
	assert.Equal(t, testParams.UserAgent, req.Device.UA)
	assert.Equal(t, "203.0.113.9", req.Device.IP)
	assert.Empty(t, req.Device.IPv6)
	assert.Equal(t, adcom1.DeviceType(3), req.Device.DeviceType)
	assert.Equal(t, "Android", req.Device.OS)

	assert.Equal(t, &openrtb2.User{ID: "id-3"}, req.User)

	assert.NoError(t, ValidateRequest(req))
}

func TestBuildFreshIDsPerRequest(t *testing.T) {
	builder := NewRequestBuilder(testVideo, &sequentialIDs{})

	first := builder.Build(testParams)
	second := builder.Build(testParams)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.Imp[0].ID, second.Imp[0].ID)
	assert.NotEqual(t, first.User.ID, second.User.ID)
}

func TestBuildDoesNotShareConfigSlices(t *testing.T) {
	builder := NewRequestBuilder(testVideo, &sequentialIDs{})

	req := builder.Build(testParams)
	req.Imp[0].Video.MIMEs[0] = "changed"

	assert.Equal(t, "video/mp4", testVideo.MIMEs[0])
}

func TestBuildIPv6Device(t *testing.T) {
	builder := NewRequestBuilder(testVideo, &sequentialIDs{})
	params := testParams
	params.ClientIP = "2001:db8::1"

	req := builder.Build(params)

	assert.Empty(t, req.Device.IP)
	assert.Equal(t, "2001:db8::1", req.Device.IPv6)
}

func TestValidateRequest(t *testing.T) {
	builder := NewRequestBuilder(testVideo, &sequentialIDs{})

	noMimes := testVideo
	noMimes.MIMEs = nil
	badDurations := testVideo
	badDurations.MinDuration = 60

	testCases := []struct {
		description string
		req         *openrtb2.BidRequest
		expectErr   bool
	}{
		{"valid request", builder.Build(testParams), false},
		{"nil request", nil, true},
		{"no impressions", &openrtb2.BidRequest{ID: "x"}, true},
		{"missing video", &openrtb2.BidRequest{ID: "x", Imp: []openrtb2.Imp{{ID: "i"}}}, true},
		{"no mimes", NewRequestBuilder(noMimes, &sequentialIDs{}).Build(testParams), true},
		{"inverted durations", NewRequestBuilder(badDurations, &sequentialIDs{}).Build(testParams), true},
	}

	for _, test := range testCases {
		err := ValidateRequest(test.req)
		if test.expectErr {
			assert.Error(t, err, test.description)
		} else {
			assert.NoError(t, err, test.description)
		}
	}
}
