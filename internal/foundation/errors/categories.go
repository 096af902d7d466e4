package errors

import "maps"

// ErrorCategory groups failures by what the user has to do about them.
type ErrorCategory string

const (
	// CategoryConfig covers missing or unparseable configuration, unsupported
	// policy modes and missing repository URLs.
	CategoryConfig ErrorCategory = "config"
	CategoryAuth   ErrorCategory = "auth"

	// CategoryNotFound is a remote URL that does not resolve to a repository.
	CategoryNotFound ErrorCategory = "not_found"

	// CategoryRemoteState is a remote that has no branches or lacks the
	// requested one. Fatal to that repository only.
	CategoryRemoteState ErrorCategory = "remote_state"

	CategoryGit        ErrorCategory = "git"
	CategoryNetwork    ErrorCategory = "network"
	CategoryFileSystem ErrorCategory = "filesystem"

	// CategoryAdvisory marks best-effort companion steps (seed script, agent launch).
	CategoryAdvisory ErrorCategory = "advisory"
	CategoryInternal ErrorCategory = "internal"
)

var strictExitCodes = map[ErrorCategory]int{
	CategoryRemoteState: 3,
	CategoryNotFound:    4,
	CategoryAuth:        5,
	CategoryConfig:      7,
	CategoryGit:         8,
	CategoryNetwork:     8,
	CategoryInternal:    10,
	CategoryFileSystem:  11,
	CategoryAdvisory:    12,
}

// ExitCode is the process status used under --strict-exit.
func (c ErrorCategory) ExitCode() int {
	if code, ok := strictExitCodes[c]; ok {
		return code
	}
	return 1
}

// Headline prefixes the user-facing message for the category.
func (c ErrorCategory) Headline() string {
	switch c {
	case CategoryConfig:
		return "Configuration error"
	case CategoryRemoteState:
		return "Repository not ready"
	case CategoryAuth:
		return "Authentication error"
	case CategoryAdvisory:
		return "Warning"
	default:
		return "Error"
	}
}

// ErrorSeverity indicates the impact level of an error.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // ends the run
	SeverityError   ErrorSeverity = "error"   // fails one repository or step
	SeverityWarning ErrorSeverity = "warning" // run continues
)

// RetryStrategy indicates whether repeating the operation can help.
type RetryStrategy string

const (
	RetryNever      RetryStrategy = "never"
	RetryBackoff    RetryStrategy = "backoff"
	RetryRateLimit  RetryStrategy = "rate_limit"
	RetryUserAction RetryStrategy = "user"
)

// ErrorContext provides structured context for errors.
type ErrorContext map[string]any

// Set adds or updates a context value.
func (c ErrorContext) Set(key string, value any) ErrorContext {
	if c == nil {
		c = make(ErrorContext)
	}
	c[key] = value
	return c
}

// Get retrieves a context value.
func (c ErrorContext) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// Clone returns an independent copy with other merged on top.
func (c ErrorContext) Clone(other ErrorContext) ErrorContext {
	out := make(ErrorContext, len(c)+len(other))
	maps.Copy(out, c)
	maps.Copy(out, other)
	return out
}
