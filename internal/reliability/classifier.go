package reliability

import (
	"context"
	"errors"
)

// IsRetryableHTTPStatus classifies retryable HTTP status codes.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case 408, 429, 500, 502, 503, 504:
		return true
	default:
		return false
	}
}

// Class labels a failed upstream call for metrics. Nothing is retried;
// the label only separates outages from caller or credential mistakes.
type Class string

const (
	ClassOK        Class = "ok"
	ClassTransient Class = "transient"
	ClassPermanent Class = "permanent"
	ClassCanceled  Class = "canceled"
)

// Classify maps an upstream HTTP status (0 when no response was received)
// and the call error to a Class.
func Classify(status int, err error) Class {
	if err == nil {
		return ClassOK
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return ClassCanceled
	}
	if status == 0 {
		// Transport failure before any response.
		return ClassTransient
	}
	if IsRetryableHTTPStatus(status) {
		return ClassTransient
	}
	return ClassPermanent
}
