package errortypes

import (
	"errors"
	"net/http"
)

// Defines numeric codes for well-known errors.
const (
	UnknownErrorCode = 999
	TimeoutErrorCode = iota
	BadServerResponseErrorCode
	NoBidErrorCode
	DispatchFailureErrorCode
	NoCompatibleBidErrorCode
	EmptyVASTErrorCode
	MalformedVASTErrorCode
	MalformedVASTAfterSubstitutionErrorCode
	FailedToMarshalErrorCode
	FailedToUnmarshalErrorCode
)

// Coder provides an error or warning code with severity.
type Coder interface {
	Code() int
	Severity() Severity
}

// ReadCode returns the error or warning code, or UnknownErrorCode if unavailable.
func ReadCode(err error) int {
	var c Coder
	if errors.As(err, &c) {
		return c.Code()
	}
	return UnknownErrorCode
}

// StatusCode maps a terminal auction error to the HTTP status returned to the caller.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	switch ReadCode(err) {
	case DispatchFailureErrorCode:
		return http.StatusBadGateway
	case NoCompatibleBidErrorCode:
		return http.StatusNoContent
	case EmptyVASTErrorCode, MalformedVASTErrorCode, MalformedVASTAfterSubstitutionErrorCode:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
