package selector

import (
	"math"
	"strings"

	"github.com/ctvbid/ctvbid/errortypes"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// AspectRatioTolerance is the largest absolute difference between the requested and the creative
// width/height ratios for a bid to be considered a fit.
const AspectRatioTolerance = 0.1

// Select picks the highest priced bid across every seat of the response which carries markup
// and whose creative fits the requested dimensions. Equal prices go to the bid seen last.
func Select(resp *openrtb2.BidResponse, width, height int) (openrtb2.Bid, error) {
	var (
		winner openrtb2.Bid
		found  bool
	)

	if resp != nil {
		for _, seat := range resp.SeatBid {
			for _, bid := range seat.Bid {
				if strings.TrimSpace(bid.AdM) == "" {
					continue
				}
				if !IsCompatible(width, height, int(bid.W), int(bid.H)) {
					continue
				}
				if !found || bid.Price >= winner.Price {
					winner = bid
					found = true
				}
			}
		}
	}

	if !found {
		return openrtb2.Bid{}, &errortypes.NoCompatibleBid{Message: "no compatible bid"}
	}
	return winner, nil
}

// IsCompatible reports whether a creative of cw x ch fits a slot of w x h.
// Creatives that don't declare both dimensions are always accepted.
func IsCompatible(w, h, cw, ch int) bool {
	if cw <= 0 || ch <= 0 || w <= 0 || h <= 0 {
		return true
	}
	requested := float64(w) / float64(h)
	creative := float64(cw) / float64(ch)
	return math.Abs(requested-creative) < AspectRatioTolerance
}
