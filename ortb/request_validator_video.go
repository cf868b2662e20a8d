package ortb

import (
	"errors"
	"fmt"

	"github.com/prebid/openrtb/v20/openrtb2"
)

// ValidateRequest checks the invariants DSPs rely on: a single video impression with a
// player size inside the supported range. A failure here points at misconfiguration, not caller input.
func ValidateRequest(req *openrtb2.BidRequest) error {
	if req == nil || req.ID == "" {
		return errors.New("request.id must be a non-empty string")
	}
	if len(req.Imp) != 1 {
		return fmt.Errorf("request.imp must contain exactly one impression. Got %d", len(req.Imp))
	}
	return validateVideo(req.Imp[0].Video, 0)
}

func validateVideo(video *openrtb2.Video, impIndex int) error {
	if video == nil {
		return fmt.Errorf("request.imp[%d].video is required", impIndex)
	}

	if len(video.MIMEs) < 1 {
		return fmt.Errorf("request.imp[%d].video.mimes must contain at least one supported MIME type", impIndex)
	}

	if video.W == nil || *video.W < 1 || *video.W > 3840 {
		return fmt.Errorf("request.imp[%d].video.w must be in the range [1, 3840]", impIndex)
	}
	if video.H == nil || *video.H < 1 || *video.H > 2160 {
		return fmt.Errorf("request.imp[%d].video.h must be in the range [1, 2160]", impIndex)
	}
	if video.MaxDuration > 0 && video.MinDuration > video.MaxDuration {
		return fmt.Errorf("request.imp[%d].video.minduration must not exceed maxduration", impIndex)
	}

	return nil
}
