package errortypes

import "errors"

// Severity represents the severity level of an auction processing error.
type Severity int

const (
	// SeverityUnknown represents an unknown severity level.
	SeverityUnknown Severity = iota

	// SeverityFatal represents a fatal error which prevents a VAST response.
	SeverityFatal

	// SeverityWarning represents a non-fatal error; the auction may still produce a winner.
	SeverityWarning
)

func isFatal(err error) bool {
	var s Coder
	return !errors.As(err, &s) || s.Severity() == SeverityFatal
}

// IsWarning returns true if an error is labeled with a Severity of SeverityWarning
func IsWarning(err error) bool {
	var s Coder
	return errors.As(err, &s) && s.Severity() == SeverityWarning
}

// ContainsFatalError checks if the error list contains a fatal error.
func ContainsFatalError(errors []error) bool {
	for _, err := range errors {
		if isFatal(err) {
			return true
		}
	}

	return false
}
