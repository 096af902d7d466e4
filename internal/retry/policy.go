package retry

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/agentboot/internal/config"
	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
)

// Defaults for clone and fetch retries.
const (
	DefaultInitial = 500 * time.Millisecond
	DefaultMax     = 10 * time.Second
)

// Policy decides how often and how long to wait between git attempts.
// A bootstrap run is interactive, so the zero-retry default fails fast.
type Policy struct {
	Mode       config.RetryBackoffMode
	Initial    time.Duration
	Max        time.Duration
	MaxRetries int // retries after the first failure
}

// DefaultPolicy is linear 500ms steps capped at 10s, with no retries.
func DefaultPolicy() Policy {
	return Policy{Mode: config.RetryBackoffLinear, Initial: DefaultInitial, Max: DefaultMax}
}

// NewPolicy overlays non-zero values on the default. Unknown modes keep
// linear backoff and an initial delay above max is clamped.
func NewPolicy(mode config.RetryBackoffMode, initial, maxDelay time.Duration, maxRetries int) Policy {
	p := DefaultPolicy()
	if config.NormalizeRetryBackoff(string(mode)) == mode && mode != "" {
		p.Mode = mode
	}
	if initial > 0 {
		p.Initial = initial
	}
	if maxDelay > 0 {
		p.Max = maxDelay
	}
	if maxRetries > 0 {
		p.MaxRetries = maxRetries
	}
	p.Initial = min(p.Initial, p.Max)
	return p
}

// FromFlags builds a policy from the --retry-backoff and --git-retries flags.
// ok is false when the backoff name was not recognized.
func FromFlags(backoff string, retries int) (p Policy, ok bool) {
	mode := config.NormalizeRetryBackoff(backoff)
	return NewPolicy(mode, 0, 0, retries), mode != ""
}

// Delay is the wait before the given retry (1 for the first retry).
func (p Policy) Delay(retry int) time.Duration {
	if retry < 1 {
		return 0
	}
	var d time.Duration
	switch p.Mode {
	case config.RetryBackoffFixed:
		d = p.Initial
	case config.RetryBackoffExponential:
		d = p.Initial << (retry - 1)
	default:
		d = p.Initial * time.Duration(retry)
	}
	// Overflow of the shift shows up as a non-positive duration.
	if d <= 0 || d > p.Max {
		return p.Max
	}
	return d
}

// Attempts is the total number of tries, the first included.
func (p Policy) Attempts() int {
	return p.MaxRetries + 1
}

func (p Policy) String() string {
	return fmt.Sprintf("%s(initial=%s max=%s retries=%d)", p.Mode, p.Initial, p.Max, p.MaxRetries)
}

// Validate rejects a policy that Do cannot apply.
func (p Policy) Validate() error {
	var problem string
	switch {
	case p.Initial <= 0:
		problem = "retry initial delay must be positive"
	case p.Max <= 0:
		problem = "retry max delay must be positive"
	case p.MaxRetries < 0:
		problem = "retry count cannot be negative"
	default:
		return nil
	}
	return ferrors.ConfigError(problem).WithContext("policy", p.String()).Build()
}
