package git

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"

	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
	"git.home.luguber.info/inful/agentboot/internal/metrics"
	"git.home.luguber.info/inful/agentboot/internal/retry"
)

// Synchronizer brings a descriptor's local path to exactly origin/<branch>.
type Synchronizer struct {
	probe    RemoteProber
	auth     AuthFunc
	policy   retry.Policy
	guidance io.Writer
	recorder metrics.Recorder
}

// SyncOption configures a Synchronizer.
type SyncOption func(*Synchronizer)

// WithProbe replaces the remote prober.
func WithProbe(p RemoteProber) SyncOption {
	return func(s *Synchronizer) { s.probe = p }
}

// WithRetryPolicy enables retries of clone and fetch on transient errors.
func WithRetryPolicy(p retry.Policy) SyncOption {
	return func(s *Synchronizer) { s.policy = p }
}

// WithGuidance sets where remediation text is written.
func WithGuidance(w io.Writer) SyncOption {
	return func(s *Synchronizer) { s.guidance = w }
}

// WithRecorder sets the metrics recorder for retries.
func WithRecorder(r metrics.Recorder) SyncOption {
	return func(s *Synchronizer) { s.recorder = r }
}

// NewSynchronizer creates a Synchronizer. auth may be nil for anonymous remotes.
func NewSynchronizer(auth AuthFunc, opts ...SyncOption) *Synchronizer {
	s := &Synchronizer{
		auth:     auth,
		policy:   retry.DefaultPolicy(),
		guidance: os.Stderr,
		recorder: metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.probe == nil {
		s.probe = NewProbe(auth)
	}
	if s.recorder == nil {
		s.recorder = metrics.NoopRecorder{}
	}
	return s
}

// Sync evaluates the descriptor against the remote and the local path, in
// order, stopping at the first terminal state. Failures are reported in the
// Outcome and never returned as errors.
func (s *Synchronizer) Sync(ctx context.Context, d Descriptor) Outcome {
	out := Outcome{Repository: d.Name, Path: d.LocalPath}
	d.Branch = d.BranchOrDefault()

	if d.URL == "" {
		out.Reason = fmt.Sprintf("missing %s_repo.url in configuration", d.Name)
		out.Err = ferrors.ConfigError(out.Reason).ForRepository(d.Name).Build()
		slog.Error("Repository not configured", logfields.Repository(d.Name), slog.String("reason", out.Reason))
		return out
	}

	switch State(ctx, s.probe, d.URL, d.Branch) {
	case NoBranches:
		out.Reason = "remote has no branches"
		out.Err = ferrors.RemoteStateError(out.Reason).
			ForRepository(d.Name).
			WithContext("branch", d.Branch).
			Build()
		slog.Error("Remote has no branches", logfields.Repository(d.Name), logfields.URL(Redact(d.URL)))
		s.writeGuidance(SeedGuidance(d))
		return out
	case BranchMissing:
		out.Reason = fmt.Sprintf("branch %q does not exist on the remote", d.Branch)
		out.Err = ferrors.RemoteStateError(out.Reason).
			ForRepository(d.Name).
			WithContext("branch", d.Branch).
			Build()
		slog.Error("Required branch missing on remote", logfields.Repository(d.Name), logfields.Branch(d.Branch), logfields.URL(Redact(d.URL)))
		s.writeGuidance(BranchGuidance(d))
		return out
	case BranchPresent:
	}

	commit, err := s.syncLocal(ctx, d)
	if err != nil {
		out.Err = ClassifyGitError(err, "sync", d.URL)
		out.Reason = err.Error()
		slog.Error("Repository sync failed", logfields.Repository(d.Name), logfields.Path(d.LocalPath), logfields.Error(err))
		return out
	}

	out.Ready = true
	out.Commit = commit
	slog.Info("Repository ready", logfields.Repository(d.Name), logfields.Branch(d.Branch), logfields.Commit(commit), logfields.Path(d.LocalPath))
	return out
}

func (s *Synchronizer) syncLocal(ctx context.Context, d Descriptor) (string, error) {
	state, err := InspectLocal(d.LocalPath)
	if err != nil {
		return "", err
	}
	slog.Debug("Inspected local path", logfields.Repository(d.Name), logfields.Path(d.LocalPath), logfields.State(state.String()))

	switch state {
	case Absent:
		return s.clone(ctx, d)
	case NonGitDirectory:
		slog.Info("Directory exists but is not a git repository; initializing", logfields.Repository(d.Name), logfields.Path(d.LocalPath))
		if _, err := git.PlainInit(d.LocalPath, false); err != nil {
			return "", fmt.Errorf("git init: %w", err)
		}
	case GitRepository:
	}

	repo, err := git.PlainOpen(d.LocalPath)
	if err != nil {
		return "", fmt.Errorf("open repository: %w", err)
	}
	return s.update(ctx, repo, d)
}

func (s *Synchronizer) clone(ctx context.Context, d Descriptor) (string, error) {
	if err := os.MkdirAll(filepath.Dir(d.LocalPath), 0o755); err != nil {
		return "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create parent directory").
			WithContext("path", filepath.Dir(d.LocalPath)).
			Build()
	}

	am, err := s.authFor(d.URL)
	if err != nil {
		return "", err
	}

	slog.Info("Cloning repository", logfields.Repository(d.Name), logfields.Branch(d.Branch), logfields.Path(d.LocalPath))

	var repo *git.Repository
	err = s.withRetry(ctx, "clone", d.Name, func() error {
		var cerr error
		repo, cerr = git.PlainCloneContext(ctx, d.LocalPath, false, &git.CloneOptions{
			URL:           d.URL,
			Auth:          am,
			RemoteName:    git.DefaultRemoteName,
			ReferenceName: plumbing.NewBranchReferenceName(d.Branch),
			SingleBranch:  true,
		})
		return classifyTransportError("clone", d.URL, cerr)
	})
	if err != nil {
		return "", fmt.Errorf("git clone: %w", err)
	}

	if err := configureOrigin(repo, d); err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

func (s *Synchronizer) authFor(url string) (transport.AuthMethod, error) {
	if s.auth == nil {
		return nil, nil
	}
	am, err := s.auth(url)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryAuth, "failed to prepare credentials").
			WithContext("url", Redact(url)).
			Build()
	}
	return am, nil
}

func (s *Synchronizer) withRetry(ctx context.Context, op, name string, fn func() error) error {
	return retry.Do(ctx, s.policy, retryClassifier{}, func(attempt int, err error) {
		s.recorder.IncGitRetry(op)
		slog.Warn("Retrying git operation", logfields.Op(op), logfields.Repository(name), logfields.Attempt(attempt), logfields.Error(err))
	}, fn)
}

func (s *Synchronizer) writeGuidance(text string) {
	if s.guidance == nil {
		return
	}
	_, _ = fmt.Fprintf(s.guidance, "\n%s\n", text)
}
