package metrics

import (
	"time"
)

// Labels defines the labels that can be attached to the request metrics.
type Labels struct {
	RequestStatus RequestStatus
}

// DSPLabels defines the labels that can be attached to the DSP metrics.
type DSPLabels struct {
	DSP     string // host of the configured endpoint
	Outcome DSPOutcome
}

// RequestStatus : The request return status
type RequestStatus string

// DSPOutcome : The result of a single outbound DSP attempt
type DSPOutcome string

// The request statuses
const (
	RequestStatusOK              RequestStatus = "ok"
	RequestStatusNoCompatibleBid RequestStatus = "no_compatible_bid"
	RequestStatusDispatchFailure RequestStatus = "dispatch_failure"
	RequestStatusInvalidVAST     RequestStatus = "invalid_vast"
	RequestStatusErr             RequestStatus = "err"
)

func RequestStatuses() []RequestStatus {
	return []RequestStatus{
		RequestStatusOK,
		RequestStatusNoCompatibleBid,
		RequestStatusDispatchFailure,
		RequestStatusInvalidVAST,
		RequestStatusErr,
	}
}

// The DSP attempt outcomes
const (
	DSPOutcomeBid         DSPOutcome = "bid"
	DSPOutcomeNoBid       DSPOutcome = "nobid"
	DSPOutcomeTimeout     DSPOutcome = "timeout"
	DSPOutcomeBadResponse DSPOutcome = "bad_response"
	DSPOutcomeErr         DSPOutcome = "err"
)

func DSPOutcomes() []DSPOutcome {
	return []DSPOutcome{
		DSPOutcomeBid,
		DSPOutcomeNoBid,
		DSPOutcomeTimeout,
		DSPOutcomeBadResponse,
		DSPOutcomeErr,
	}
}

// UnknownDSP is used for endpoints which don't parse into a host.
const UnknownDSP = "unknown"

// MetricsEngine is a generic interface to record metrics into the desired backend
// The first three metrics function fire off once per incoming request, so total metrics
// will equal the total number of incoming requests. The DSP functions fire off per outgoing
// attempt, the price per winning bid and the connection functions per accepted TCP connection.
type MetricsEngine interface {
	RecordRequest(labels Labels)
	RecordRequestTime(labels Labels, length time.Duration)
	RecordDSPFailover(attempts int)
	RecordDSPRequest(labels DSPLabels)
	RecordDSPTime(dsp string, length time.Duration)
	RecordDSPRetry(dsp string)
	RecordWinningPrice(price float64)
	RecordConnectionAccept(success bool)
	RecordConnectionClose(success bool)
}
