package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "agent_config.json").
			Build()

		if err.Category() != CategoryConfig {
			t.Errorf("expected category %s, got %s", CategoryConfig, err.Category())
		}
		if err.Severity() != SeverityFatal {
			t.Errorf("expected severity %s, got %s", SeverityFatal, err.Severity())
		}
		if err.Message() != "invalid configuration" {
			t.Errorf("expected message 'invalid configuration', got %s", err.Message())
		}
		if file, _ := err.Context().Get("file"); file != "agent_config.json" {
			t.Errorf("expected context file=agent_config.json, got %v", file)
		}
	})

	t.Run("Error detection", func(t *testing.T) {
		err := ConfigError("test error").Build()

		if !HasCategory(err, CategoryConfig) {
			t.Error("expected error to have config category")
		}
		if err.CanRetry() {
			t.Error("expected config error to not be retryable")
		}
		if !err.IsFatal() {
			t.Error("expected config error to be fatal")
		}
	})

	t.Run("Wrapped chain", func(t *testing.T) {
		inner := SyncError("fetch failed").ForRepository("spec").Build()
		wrapped := fmt.Errorf("repository spec: %w", inner)

		if GetCategory(wrapped) != CategoryGit {
			t.Errorf("expected git category through wrap, got %s", GetCategory(wrapped))
		}
		if c, _ := AsClassified(wrapped); c.Repository() != "spec" {
			t.Errorf("expected repository spec, got %q", c.Repository())
		}
		if GetCategory(errors.New("plain")) != CategoryInternal {
			t.Error("expected unclassified errors to report internal")
		}
	})
}

func TestErrorBuilder(t *testing.T) {
	t.Run("Fluent API", func(t *testing.T) {
		originalErr := errors.New("original error")
		err := WrapError(originalErr, CategoryNetwork, "network failure").
			Warning().
			RateLimit().
			WithContext("host", "github.com").
			Build()

		if !errors.Is(err, originalErr) {
			t.Error("expected wrapped error to match original")
		}
		if !err.CanRetry() || !err.RateLimited() {
			t.Error("expected rate-limited retryable error")
		}
		if err.Error() != "[network:warning] network failure: original error" {
			t.Errorf("unexpected error string %q", err.Error())
		}
	})

	t.Run("Category override", func(t *testing.T) {
		err := SyncError("clone failed").WithCategory(CategoryAuth).UserAction().Build()
		if err.Category() != CategoryAuth {
			t.Errorf("expected auth category, got %s", err.Category())
		}
		if err.CanRetry() {
			t.Error("expected user action errors to not be retryable")
		}
	})

	t.Run("Context copy on WithContext", func(t *testing.T) {
		base := AdvisoryError("seed failed").WithContext("script", "seed.sh").Build()
		derived := base.WithContext("exit_code", 3)

		if _, ok := base.Context().Get("exit_code"); ok {
			t.Error("expected original context to be unchanged")
		}
		if v, _ := derived.Context().Get("exit_code"); v != 3 {
			t.Errorf("expected exit_code=3, got %v", v)
		}
	})

	t.Run("Builder reuse", func(t *testing.T) {
		b := RemoteStateError("remote has no branches")
		first := b.ForRepository("spec").Build()
		second := b.ForRepository("source").Build()

		if first.Repository() != "spec" || second.Repository() != "source" {
			t.Errorf("expected independent contexts, got %q and %q", first.Repository(), second.Repository())
		}
	})
}

func TestCategoryExitCodes(t *testing.T) {
	tests := map[ErrorCategory]int{
		CategoryRemoteState:     3,
		CategoryConfig:          7,
		CategoryGit:             8,
		CategoryNetwork:         8,
		CategoryInternal:        10,
		CategoryFileSystem:      11,
		CategoryAdvisory:        12,
		ErrorCategory("custom"): 1,
	}
	for category, want := range tests {
		if got := category.ExitCode(); got != want {
			t.Errorf("%s: ExitCode() = %d, want %d", category, got, want)
		}
	}
}
