package git

import (
	"errors"
	"net"
	"strings"
)

// Adaptive delay multipliers keyed by transient error type.
const (
	multRateLimit      = 3.0
	multNetworkTimeout = 1.0
)

// retryClassifier plugs git error semantics into retry.Do.
type retryClassifier struct{}

func (retryClassifier) Permanent(err error) bool { return isPermanentGitError(err) }

func (retryClassifier) Multiplier(err error) float64 {
	switch {
	case errors.As(err, new(*RateLimitError)):
		return multRateLimit
	case errors.As(err, new(*NetworkTimeoutError)):
		return multNetworkTimeout
	}
	return 1
}

func isPermanentGitError(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.As(err, new(*AuthError)),
		errors.As(err, new(*NotFoundError)),
		errors.As(err, new(*UnsupportedProtocolError)):
		return true
	case errors.As(err, new(*RateLimitError)),
		errors.As(err, new(*NetworkTimeoutError)):
		return false
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "auth") || strings.Contains(msg, "permission") || strings.Contains(msg, "denied") {
		return true
	}
	if strings.Contains(msg, "not found") || strings.Contains(msg, "no such remote") || strings.Contains(msg, "invalid reference") {
		return true
	}
	if strings.Contains(msg, "unsupported protocol") {
		return true
	}
	var nerr net.Error
	if errors.As(err, &nerr) {
		return !nerr.Timeout()
	}
	return false
}
