package exchange

import (
	"context"
	"net/http"

	"github.com/benbjohnson/clock"
	"github.com/ctvbid/ctvbid/config"
	"github.com/ctvbid/ctvbid/errortypes"
	"github.com/ctvbid/ctvbid/logger"
	"github.com/ctvbid/ctvbid/metrics"
	"github.com/ctvbid/ctvbid/ortb"
	"github.com/ctvbid/ctvbid/sanitizer"
	"github.com/ctvbid/ctvbid/selector"
	"github.com/ctvbid/ctvbid/util/randomutil"
	"github.com/ctvbid/ctvbid/vast"
	"github.com/prebid/openrtb/v20/openrtb2"
)

// Dispatcher sends a bid request to an ordered list of DSP endpoints.
type Dispatcher interface {
	DispatchAll(ctx context.Context, endpoints []string, req *openrtb2.BidRequest) (*openrtb2.BidResponse, error)
}

// AuctionResult is what the caller receives for one VAST request. Body is always a complete
// VAST document: the winning creative or the empty fallback.
type AuctionResult struct {
	RequestID string
	Status    int
	Body      string
	// Err is the terminal error when Status isn't 200. It is never shown to the caller.
	Err error
}

// Exchange runs one VAST auction per call. It holds only immutable configuration and is safe
// for concurrent use.
type Exchange struct {
	sanitizer  *sanitizer.Sanitizer
	builder    *ortb.RequestBuilder
	dispatcher Dispatcher
	processor  *vast.Processor
	endpoints  []string
	me         metrics.MetricsEngine
	logger     logger.Logger
	clock      clock.Clock
}

func NewExchange(cfg *config.Configuration, dispatcher Dispatcher, ids randomutil.IDGenerator, me metrics.MetricsEngine, log logger.Logger) *Exchange {
	endpoints := make([]string, len(cfg.DSP.Endpoints))
	copy(endpoints, cfg.DSP.Endpoints)

	return &Exchange{
		sanitizer:  sanitizer.New(cfg.Defaults),
		builder:    ortb.NewRequestBuilder(cfg.Video, ids),
		dispatcher: dispatcher,
		processor:  vast.NewProcessor(),
		endpoints:  endpoints,
		me:         me,
		logger:     log,
		clock:      clock.New(),
	}
}

// HoldAuction sanitizes the raw parameters, builds the bid request, fails over across the DSPs,
// selects the winning bid and prepares its VAST. Any failure yields the empty VAST document and
// a status derived from the failure kind.
func (e *Exchange) HoldAuction(ctx context.Context, raw map[string]string) *AuctionResult {
	start := e.clock.Now()

	params := e.sanitizer.Sanitize(raw)
	req := e.builder.Build(params)

	result := &AuctionResult{RequestID: req.ID}
	markup, err := e.runAuction(ctx, params, req)
	if err != nil {
		result.Status = statusCode(err)
		result.Body = vast.EmptyVAST
		result.Err = err
		e.logger.Errorf("[%s] auction failed with status %d: %v", req.ID, result.Status, err)
	} else {
		result.Status = http.StatusOK
		result.Body = markup
	}

	labels := metrics.Labels{RequestStatus: requestStatus(err)}
	e.me.RecordRequest(labels)
	e.me.RecordRequestTime(labels, e.clock.Since(start))
	return result
}

func (e *Exchange) runAuction(ctx context.Context, params sanitizer.RequestParameters, req *openrtb2.BidRequest) (string, error) {
	if err := ortb.ValidateRequest(req); err != nil {
		return "", err
	}

	resp, err := e.dispatcher.DispatchAll(ctx, e.endpoints, req)
	if err != nil {
		return "", err
	}

	bid, err := selector.Select(resp, params.Width, params.Height)
	if err != nil {
		return "", err
	}
	e.logger.Debugf("[%s] selected bid %s at %.4f", req.ID, bid.ID, bid.Price)

	price := bid.Price
	markup, err := e.processor.Process(bid.AdM, &price)
	if err != nil {
		return "", err
	}
	e.me.RecordWinningPrice(price)
	return markup, nil
}

// statusCode maps the failure onto an HTTP status, falling back to 500 for anything outside [100, 599].
func statusCode(err error) int {
	code := errortypes.StatusCode(err)
	if code < 100 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}

func requestStatus(err error) metrics.RequestStatus {
	if err == nil {
		return metrics.RequestStatusOK
	}
	switch errortypes.ReadCode(err) {
	case errortypes.DispatchFailureErrorCode:
		return metrics.RequestStatusDispatchFailure
	case errortypes.NoCompatibleBidErrorCode:
		return metrics.RequestStatusNoCompatibleBid
	case errortypes.EmptyVASTErrorCode, errortypes.MalformedVASTErrorCode, errortypes.MalformedVASTAfterSubstitutionErrorCode:
		return metrics.RequestStatusInvalidVAST
	default:
		return metrics.RequestStatusErr
	}
}
