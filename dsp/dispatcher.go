package dsp

import (
	"context"
	"fmt"

	"github.com/ctvbid/ctvbid/errortypes"
	"github.com/ctvbid/ctvbid/logger"
	"github.com/ctvbid/ctvbid/metrics"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// Dispatcher tries DSP endpoints one after another in priority order and stops at the first
// usable response. Endpoints are never called concurrently.
type Dispatcher struct {
	sender Sender
	me     metrics.MetricsEngine
	logger logger.Logger
}

func NewDispatcher(sender Sender, me metrics.MetricsEngine, log logger.Logger) *Dispatcher {
	return &Dispatcher{
		sender: sender,
		me:     me,
		logger: log,
	}
}

// DispatchAll returns the first response holding at least one seat with at least one bid.
// Endpoints after the winning one are not contacted. When every endpoint fails or comes back
// empty the result is a DispatchFailure.
func (d *Dispatcher) DispatchAll(ctx context.Context, endpoints []string, req *openrtb2.BidRequest) (*openrtb2.BidResponse, error) {
	attempts := 0
	defer func() {
		d.me.RecordDSPFailover(attempts)
	}()

	var failures []error
	for _, endpoint := range endpoints {
		if ctx.Err() != nil {
			break
		}
		attempts++

		resp, err := d.sender.Send(ctx, endpoint, req)
		if err != nil {
			d.logger.Warnf("[%s] DSP %s failed, trying next endpoint: %v", req.ID, endpoint, err)
		} else if !HasBids(resp) {
			err = &errortypes.NoBid{Message: "DSP returned no bids"}
			d.logger.Infof("[%s] DSP %s: %v", req.ID, endpoint, err)
		} else {
			return resp, nil
		}
		failures = append(failures, fmt.Errorf("%s: %w", endpoint, err))
	}

	return nil, &errortypes.DispatchFailure{Message: "no usable DSP response", Attempts: failures}
}

// HasBids reports whether the response has a seat carrying at least one bid.
func HasBids(resp *openrtb2.BidResponse) bool {
	if resp == nil {
		return false
	}
	for _, seat := range resp.SeatBid {
		if len(seat.Bid) > 0 {
			return true
		}
	}
	return false
}
