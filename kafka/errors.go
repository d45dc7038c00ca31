package kafka

import (
	"errors"
	"strings"

	kafkago "github.com/segmentio/kafka-go"
)

var connectionPatterns = []string{
	"connection refused",
	"connection reset",
	"broken pipe",
	"i/o timeout",
	"no route to host",
	"network is unreachable",
	"broker not available",
	"leader not available",
	"connection closed",
	"dial tcp",
}

var nonRetryablePatterns = []string{
	"message too large",
	"invalid topic",
	"unknown topic",
	"authorization failed",
	"sasl authentication failed",
}

// IsConnectionError reports whether err looks like a broker connectivity failure.
func IsConnectionError(err error) bool {
	return err != nil && containsAny(err.Error(), connectionPatterns)
}

// IsNonRetryableError reports whether err will fail the same way on every
// attempt, such as an oversized message or a missing topic.
func IsNonRetryableError(err error) bool {
	if err == nil {
		return false
	}
	var kerr kafkago.Error
	if errors.As(err, &kerr) {
		return !kerr.Temporary()
	}
	return containsAny(err.Error(), nonRetryablePatterns)
}

func containsAny(s string, patterns []string) bool {
	s = strings.ToLower(s)
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
