package errors

import (
	stderrors "errors"
	"fmt"
)

// ClassifiedError is a failure the bootstrapper recognizes. The message is
// what went wrong; the hint, when present, is what the user should do.
type ClassifiedError struct {
	category ErrorCategory
	severity ErrorSeverity
	retry    RetryStrategy
	message  string
	hint     string
	cause    error
	context  ErrorContext
}

func (e *ClassifiedError) Error() string {
	prefix := fmt.Sprintf("[%s:%s] %s", e.category, e.severity, e.message)
	if e.cause == nil {
		return prefix
	}
	return prefix + ": " + e.cause.Error()
}

func (e *ClassifiedError) Unwrap() error { return e.cause }

func (e *ClassifiedError) Category() ErrorCategory { return e.category }
func (e *ClassifiedError) Severity() ErrorSeverity { return e.severity }
func (e *ClassifiedError) Message() string         { return e.message }
func (e *ClassifiedError) Hint() string            { return e.hint }
func (e *ClassifiedError) Cause() error            { return e.cause }
func (e *ClassifiedError) Context() ErrorContext   { return e.context }

// Repository names the repository the error belongs to, if any.
func (e *ClassifiedError) Repository() string {
	name, _ := e.context[contextRepository].(string)
	return name
}

// WithContext returns a copy carrying the extra key. The receiver is unchanged.
func (e *ClassifiedError) WithContext(key string, value any) *ClassifiedError {
	cp := *e
	cp.context = e.context.Clone(ErrorContext{key: value})
	return &cp
}

// Is matches another ClassifiedError of the same category and message.
func (e *ClassifiedError) Is(target error) bool {
	other, ok := target.(*ClassifiedError)
	return ok && e.category == other.category && e.message == other.message
}

// CanRetry reports whether repeating the operation unchanged may succeed.
func (e *ClassifiedError) CanRetry() bool {
	return e.retry == RetryBackoff || e.retry == RetryRateLimit
}

// RateLimited reports a remote that asked the client to slow down.
func (e *ClassifiedError) RateLimited() bool { return e.retry == RetryRateLimit }

func (e *ClassifiedError) IsFatal() bool { return e.severity == SeverityFatal }

// AsClassified finds the first ClassifiedError in err's chain.
func AsClassified(err error) (*ClassifiedError, bool) {
	var classified *ClassifiedError
	if stderrors.As(err, &classified) {
		return classified, true
	}
	return nil, false
}

// HasCategory checks if any error in the chain belongs to a category.
func HasCategory(err error, category ErrorCategory) bool {
	classified, ok := AsClassified(err)
	return ok && classified.category == category
}

// GetCategory extracts the category from an error. Unclassified errors are internal.
func GetCategory(err error) ErrorCategory {
	if classified, ok := AsClassified(err); ok {
		return classified.category
	}
	return CategoryInternal
}
