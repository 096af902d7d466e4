package git

import (
	stderrors "errors"
	"strings"

	"git.home.luguber.info/inful/agentboot/internal/foundation/errors"
)

// GitError simplifies creating a git-scoped ClassifiedError.
func GitError(message string) *errors.ErrorBuilder {
	return errors.SyncError(message)
}

// ClassifyGitError translates go-git errors into ClassifiedErrors. Typed
// errors are matched first, then message heuristics.
func ClassifyGitError(err error, op string, url string) error {
	if err == nil {
		return nil
	}

	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	builder := GitError("git "+op+" failed").
		WithCause(err).
		WithContext("op", op).
		WithContext("url", Redact(url))

	l := strings.ToLower(err.Error())
	switch {
	case stderrors.As(err, new(*AuthError)),
		strings.Contains(l, "authentication failed") || strings.Contains(l, "not authorized") || strings.Contains(l, "could not read username") || strings.Contains(l, "invalid credentials"):
		builder.WithCategory(errors.CategoryAuth).UserAction()
	case stderrors.As(err, new(*NotFoundError)),
		strings.Contains(l, "repository not found") || strings.Contains(l, "not found") || strings.Contains(l, "does not exist"):
		builder.WithCategory(errors.CategoryNotFound).UserAction()
	case stderrors.As(err, new(*RateLimitError)),
		strings.Contains(l, "rate limit") || strings.Contains(l, "too many requests"):
		builder.WithCategory(errors.CategoryNetwork).RateLimit()
	case stderrors.As(err, new(*NetworkTimeoutError)),
		strings.Contains(l, "remote hung up") || strings.Contains(l, "connection reset") || strings.Contains(l, "timeout") || strings.Contains(l, "no route to host"):
		builder.WithCategory(errors.CategoryNetwork).Retryable()
	case stderrors.As(err, new(*RemoteDivergedError)),
		strings.Contains(l, "diverged") || strings.Contains(l, "non-fast-forward"):
		builder.WithContext("diverged", true)
	case stderrors.As(err, new(*UnsupportedProtocolError)),
		strings.Contains(l, "unsupported protocol") || strings.Contains(l, "protocol not supported"):
		builder.WithCategory(errors.CategoryConfig).UserAction()
	}

	return builder.Build()
}
