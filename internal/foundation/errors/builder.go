package errors

const contextRepository = "repository"

// ErrorBuilder assembles a ClassifiedError.
type ErrorBuilder struct {
	err ClassifiedError
}

// NewError starts an error of category with severity error and no retry.
func NewError(category ErrorCategory, message string) *ErrorBuilder {
	return &ErrorBuilder{err: ClassifiedError{
		category: category,
		severity: SeverityError,
		retry:    RetryNever,
		message:  message,
		context:  ErrorContext{},
	}}
}

// WrapError starts an error of category around cause.
func WrapError(cause error, category ErrorCategory, message string) *ErrorBuilder {
	return NewError(category, message).WithCause(cause)
}

func (b *ErrorBuilder) WithCategory(category ErrorCategory) *ErrorBuilder {
	b.err.category = category
	return b
}

func (b *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	b.err.cause = err
	return b
}

func (b *ErrorBuilder) WithSeverity(severity ErrorSeverity) *ErrorBuilder {
	b.err.severity = severity
	return b
}

func (b *ErrorBuilder) WithContext(key string, value any) *ErrorBuilder {
	b.err.context = b.err.context.Set(key, value)
	return b
}

// ForRepository tags the error with a repository name (spec, source).
func (b *ErrorBuilder) ForRepository(name string) *ErrorBuilder {
	return b.WithContext(contextRepository, name)
}

// WithHint sets the remediation printed under the message.
func (b *ErrorBuilder) WithHint(hint string) *ErrorBuilder {
	b.err.hint = hint
	return b
}

func (b *ErrorBuilder) Fatal() *ErrorBuilder   { return b.WithSeverity(SeverityFatal) }
func (b *ErrorBuilder) Warning() *ErrorBuilder { return b.WithSeverity(SeverityWarning) }

func (b *ErrorBuilder) Retryable() *ErrorBuilder {
	b.err.retry = RetryBackoff
	return b
}

func (b *ErrorBuilder) RateLimit() *ErrorBuilder {
	b.err.retry = RetryRateLimit
	return b
}

func (b *ErrorBuilder) UserAction() *ErrorBuilder {
	b.err.retry = RetryUserAction
	return b
}

// Build returns the error. The builder may be reused; later changes do not
// affect errors already built.
func (b *ErrorBuilder) Build() *ClassifiedError {
	out := b.err
	out.context = b.err.context.Clone(nil)
	return &out
}

// ConfigError is a fatal problem the user fixes in agent_config.json or the
// environment.
func ConfigError(message string) *ErrorBuilder {
	return NewError(CategoryConfig, message).Fatal().UserAction()
}

// RemoteStateError is a remote that cannot serve the requested branch yet.
func RemoteStateError(message string) *ErrorBuilder {
	return NewError(CategoryRemoteState, message).UserAction()
}

// SyncError is a failed clone, fetch, reset or pull.
func SyncError(message string) *ErrorBuilder {
	return NewError(CategoryGit, message).Retryable()
}

// AdvisoryError is a best-effort failure that never changes the outcome.
func AdvisoryError(message string) *ErrorBuilder {
	return NewError(CategoryAdvisory, message).Warning()
}

func InternalError(message string) *ErrorBuilder {
	return NewError(CategoryInternal, message).Fatal()
}
