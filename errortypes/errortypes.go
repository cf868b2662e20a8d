package errortypes

// Timeout should be used to flag that a DSP failed to return a response because the outbound
// request deadline expired before a result was received.
type Timeout struct {
	Message string
}

func (err *Timeout) Error() string {
	return err.Message
}

func (err *Timeout) Code() int {
	return TimeoutErrorCode
}

func (err *Timeout) Severity() Severity {
	return SeverityFatal
}

// BadServerResponse should be used when returning errors which are caused by bad/unexpected behavior on the remote DSP.
//
// For example:
//
//   - The DSP responded with a status other than 200
//   - The DSP gave a malformed or unexpected response body.
type BadServerResponse struct {
	Message    string
	StatusCode int
}

func (err *BadServerResponse) Error() string {
	return err.Message
}

func (err *BadServerResponse) Code() int {
	return BadServerResponseErrorCode
}

func (err *BadServerResponse) Severity() Severity {
	return SeverityFatal
}

// NoBid flags a DSP response which was well formed but carried no seat with at least one bid.
// The dispatcher treats it as "not usable" and moves on to the next endpoint.
type NoBid struct {
	Message string
}

func (err *NoBid) Error() string {
	return err.Message
}

func (err *NoBid) Code() int {
	return NoBidErrorCode
}

func (err *NoBid) Severity() Severity {
	return SeverityWarning
}

// DispatchFailure is returned when no configured DSP endpoint produced a usable response.
type DispatchFailure struct {
	Message string
	// Attempts holds the reason each tried DSP was rejected, in priority order.
	Attempts []error
}

func (err *DispatchFailure) Error() string {
	return NewAggregateErrors(err.Message, err.Attempts).Inline()
}

func (err *DispatchFailure) Unwrap() []error {
	return err.Attempts
}

func (err *DispatchFailure) Code() int {
	return DispatchFailureErrorCode
}

func (err *DispatchFailure) Severity() Severity {
	return SeverityFatal
}

// NoCompatibleBid is returned when a DSP responded but none of its bids carried markup
// with dimensions compatible with the requested player.
type NoCompatibleBid struct {
	Message string
}

func (err *NoCompatibleBid) Error() string {
	return err.Message
}

func (err *NoCompatibleBid) Code() int {
	return NoCompatibleBidErrorCode
}

func (err *NoCompatibleBid) Severity() Severity {
	return SeverityFatal
}

// InvalidVAST covers every way the winning creative can fail validation: an empty document,
// markup which doesn't parse as XML, or markup which stops parsing once the price macro is replaced.
type InvalidVAST struct {
	Message   string
	ErrorCode int
}

func (err *InvalidVAST) Error() string {
	return err.Message
}

func (err *InvalidVAST) Code() int {
	return err.ErrorCode
}

func (err *InvalidVAST) Severity() Severity {
	return SeverityFatal
}

// FailedToMarshal is used when an outbound bid request cannot be serialized.
type FailedToMarshal struct {
	Message string
}

func (err *FailedToMarshal) Error() string {
	return err.Message
}

func (err *FailedToMarshal) Code() int {
	return FailedToMarshalErrorCode
}

func (err *FailedToMarshal) Severity() Severity {
	return SeverityFatal
}

// FailedToUnmarshal is used when a DSP answered 200 but the body isn't a valid OpenRTB response.
type FailedToUnmarshal struct {
	Message string
}

func (err *FailedToUnmarshal) Error() string {
	return err.Message
}

func (err *FailedToUnmarshal) Code() int {
	return FailedToUnmarshalErrorCode
}

func (err *FailedToUnmarshal) Severity() Severity {
	return SeverityFatal
}
