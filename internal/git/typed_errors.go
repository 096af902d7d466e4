package git

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// Typed git errors enabling structured classification without string parsing upstream.

type AuthError struct {
	Op, URL string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s auth error for %s: %v", e.Op, Redact(e.URL), e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

type NotFoundError struct {
	Op, URL string
	Err     error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found %s: %v", e.Op, Redact(e.URL), e.Err)
}
func (e *NotFoundError) Unwrap() error { return e.Err }

type UnsupportedProtocolError struct {
	Op, URL string
	Err     error
}

func (e *UnsupportedProtocolError) Error() string {
	return fmt.Sprintf("%s unsupported protocol %s: %v", e.Op, Redact(e.URL), e.Err)
}
func (e *UnsupportedProtocolError) Unwrap() error { return e.Err }

// RemoteDivergedError reports a HEAD that does not match origin/<branch>
// after synchronization.
type RemoteDivergedError struct {
	Op, URL, Branch string
	Err             error
}

func (e *RemoteDivergedError) Error() string {
	return fmt.Sprintf("%s remote diverged %s@%s: %v", e.Op, Redact(e.URL), e.Branch, e.Err)
}
func (e *RemoteDivergedError) Unwrap() error { return e.Err }

type RateLimitError struct {
	Op, URL string
	Err     error
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited %s: %v", e.Op, Redact(e.URL), e.Err)
}
func (e *RateLimitError) Unwrap() error { return e.Err }

type NetworkTimeoutError struct {
	Op, URL string
	Err     error
}

func (e *NetworkTimeoutError) Error() string {
	return fmt.Sprintf("%s network timeout %s: %v", e.Op, Redact(e.URL), e.Err)
}
func (e *NetworkTimeoutError) Unwrap() error { return e.Err }

// classifyTransportError wraps clone/fetch/pull failures into typed variants when possible.
func classifyTransportError(op, url string, err error) error {
	if err == nil {
		return nil
	}
	l := strings.ToLower(err.Error())
	switch {
	case errors.Is(err, transport.ErrAuthenticationRequired),
		errors.Is(err, transport.ErrAuthorizationFailed),
		errors.Is(err, transport.ErrInvalidAuthMethod),
		strings.Contains(l, "auth"):
		return &AuthError{Op: op, URL: url, Err: err}
	case errors.Is(err, transport.ErrRepositoryNotFound),
		strings.Contains(l, "not found") || strings.Contains(l, "repository does not exist"):
		return &NotFoundError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "unsupported protocol") || strings.Contains(l, "unsupported scheme"):
		return &UnsupportedProtocolError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "rate limit") || strings.Contains(l, "too many requests"):
		return &RateLimitError{Op: op, URL: url, Err: err}
	case strings.Contains(l, "timeout") || strings.Contains(l, "timed out"):
		return &NetworkTimeoutError{Op: op, URL: url, Err: err}
	default:
		return err
	}
}
