package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/agentboot/internal/auth"
	"git.home.luguber.info/inful/agentboot/internal/config"
	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
	"git.home.luguber.info/inful/agentboot/internal/git"
	"git.home.luguber.info/inful/agentboot/internal/journal"
	"git.home.luguber.info/inful/agentboot/internal/launch"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
	"git.home.luguber.info/inful/agentboot/internal/metrics"
	"git.home.luguber.info/inful/agentboot/internal/netpolicy"
	"git.home.luguber.info/inful/agentboot/internal/retry"
	"git.home.luguber.info/inful/agentboot/internal/seed"
)

// Options configures a Runner.
type Options struct {
	WorkspaceRoot string
	RuntimeDir    string

	Provisioner *auth.Provisioner
	RetryPolicy retry.Policy
	Recorder    metrics.Recorder
	Journal     *journal.Journal

	// Guidance receives remediation text; defaults to stderr.
	Guidance io.Writer
	// Environ is the base environment for child processes; defaults to os.Environ.
	Environ func() []string

	Seed     *seed.Runner
	Launcher *launch.Launcher
	// SkipLaunch stops after the handoff (sync-only runs).
	SkipLaunch bool
}

// Runner executes bootstrap runs.
type Runner struct {
	opts Options
}

// Result summarizes a run.
type Result struct {
	Outcomes []git.Outcome
	Ready    bool
	Policy   netpolicy.Policy
	Handoff  Handoff
}

// NewRunner fills unset options with defaults.
func NewRunner(opts Options) *Runner {
	if opts.WorkspaceRoot == "" {
		opts.WorkspaceRoot = config.DefaultWorkspaceRoot
	}
	if opts.RuntimeDir == "" {
		opts.RuntimeDir = config.DefaultRuntimeDir
	}
	if opts.Provisioner == nil {
		opts.Provisioner = auth.NewProvisioner()
	}
	if err := opts.RetryPolicy.Validate(); err != nil {
		if opts.RetryPolicy != (retry.Policy{}) {
			slog.Warn("Invalid retry policy; using default", logfields.Error(err))
		}
		opts.RetryPolicy = retry.DefaultPolicy()
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	if opts.Guidance == nil {
		opts.Guidance = os.Stderr
	}
	if opts.Environ == nil {
		opts.Environ = os.Environ
	}
	if opts.Seed == nil {
		opts.Seed = seed.NewRunner()
	}
	if opts.Launcher == nil {
		opts.Launcher = launch.New()
	}
	return &Runner{opts: opts}
}

// Run performs a full bootstrap. The returned error is non-nil only for
// configuration-level problems; per-repository failures are in Result.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) (Result, error) {
	start := time.Now()
	descs := Descriptors(cfg, r.opts.WorkspaceRoot)

	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	r.opts.Journal.Record(ctx, journal.RunStarted{ConfigPath: cfg.Path, Repos: names})
	slog.Info("Starting bootstrap", logfields.RunID(r.opts.Journal.RunID()), slog.Any("repos", names))

	res := Result{Outcomes: r.SyncAll(ctx, descs)}
	res.Ready = allReady(res.Outcomes)

	policy, err := r.ApplyPolicy(ctx, cfg)
	if err != nil {
		r.finish(ctx, start, "config_error", false)
		return res, err
	}
	res.Policy = policy
	res.Handoff = handoffFor(cfg, res.Outcomes, policy)

	handoffPath := filepath.Join(r.opts.RuntimeDir, HandoffFileName)
	if err := res.Handoff.Write(handoffPath); err != nil {
		slog.Warn("Failed to write handoff file", logfields.Path(handoffPath), logfields.Error(err))
	}

	if !res.Ready {
		slog.Warn("Repositories not ready; skipping seed data and agent launch")
		r.finish(ctx, start, "not_ready", false)
		return res, nil
	}

	if !r.opts.SkipLaunch {
		env := res.Handoff.Environ(r.opts.Environ())
		if err := r.opts.Seed.Run(ctx, cfg.Environment.SeedDataScript, env); err != nil {
			slog.Warn("Seed data script failed (continuing)", logfields.Error(err))
		}
		if err := r.opts.Launcher.Launch(ctx, env); err != nil {
			slog.Warn("Agent CLI exited non-zero (continuing)", logfields.Error(err))
		}
	}

	r.finish(ctx, start, "ready", true)
	return res, nil
}

// SyncAll synchronizes each descriptor in order. One repository's failure
// never prevents the next from being attempted.
func (r *Runner) SyncAll(ctx context.Context, descs []git.Descriptor) []git.Outcome {
	outcomes := make([]git.Outcome, 0, len(descs))
	for _, d := range descs {
		outcomes = append(outcomes, r.SyncOne(ctx, d))
	}
	return outcomes
}

// SyncOne provisions credentials for d's host and synchronizes it.
func (r *Runner) SyncOne(ctx context.Context, d git.Descriptor) git.Outcome {
	start := time.Now()

	var authFn git.AuthFunc
	if d.URL != "" {
		prov := r.opts.Provisioner
		creds := prov.ProvisionForHost(auth.HostOf(d.URL))
		d.URL = prov.EffectiveURL(d.URL, creds)
		authFn = func(u string) (transport.AuthMethod, error) {
			return prov.AuthMethod(u, creds)
		}
	}

	s := git.NewSynchronizer(authFn,
		git.WithRetryPolicy(r.opts.RetryPolicy),
		git.WithGuidance(r.opts.Guidance),
		git.WithRecorder(r.opts.Recorder),
	)
	out := s.Sync(ctx, d)
	elapsed := time.Since(start)

	r.opts.Recorder.ObserveSyncDuration(d.Name, elapsed, out.Ready)
	r.opts.Recorder.IncSyncResult(d.Name, resultLabel(d, out))

	if out.Ready {
		r.opts.Journal.Record(ctx, journal.RepositorySynced{
			Repo:       d.Name,
			Branch:     d.BranchOrDefault(),
			Commit:     out.Commit,
			Path:       out.Path,
			DurationMS: elapsed.Milliseconds(),
		})
	} else {
		r.opts.Journal.Record(ctx, journal.RepositoryNotReady{
			Repo:     d.Name,
			Reason:   out.Reason,
			Category: string(ferrors.GetCategory(out.Err)),
		})
	}
	return out
}

// ApplyPolicy resolves and persists the network policy.
func (r *Runner) ApplyPolicy(ctx context.Context, cfg *config.Config) (netpolicy.Policy, error) {
	policy, err := netpolicy.Resolve(cfg.InternetAccess.Mode, cfg.AllowUnrestrictedMode, cfg.InternetAccess.AllowedSites)
	if err != nil {
		return netpolicy.Policy{}, err
	}
	if _, err := netpolicy.NewApplier(r.opts.RuntimeDir).Apply(policy); err != nil {
		return netpolicy.Policy{}, err
	}
	r.opts.Recorder.SetPolicyMode(policy.Mode.String())
	r.opts.Journal.Record(ctx, journal.PolicyApplied{Mode: policy.Mode.String(), AllowedSites: policy.AllowedSites})
	return policy, nil
}

func (r *Runner) finish(ctx context.Context, start time.Time, outcome string, ready bool) {
	elapsed := time.Since(start)
	r.opts.Recorder.ObserveRunDuration(elapsed)
	r.opts.Recorder.IncRunOutcome(outcome)
	r.opts.Journal.Record(ctx, journal.RunCompleted{Ready: ready, DurationMS: elapsed.Milliseconds()})
	slog.Info("Bootstrap finished", slog.String("outcome", outcome), logfields.DurationMS(float64(elapsed.Milliseconds())))
}

func handoffFor(cfg *config.Config, outcomes []git.Outcome, policy netpolicy.Policy) Handoff {
	h := Handoff{Policy: policy}
	for _, o := range outcomes {
		if !o.Ready {
			continue
		}
		switch {
		case cfg.SameRepo:
			h.SpecPath, h.SourcePath = o.Path, o.Path
		case o.Repository == config.SlotSpec:
			h.SpecPath = o.Path
		case o.Repository == config.SlotSource:
			h.SourcePath = o.Path
		}
	}
	return h
}

func allReady(outcomes []git.Outcome) bool {
	for _, o := range outcomes {
		if !o.Ready {
			return false
		}
	}
	return len(outcomes) > 0
}

func resultLabel(d git.Descriptor, out git.Outcome) metrics.ResultLabel {
	switch {
	case out.Ready:
		return metrics.ResultReady
	case d.URL == "":
		return metrics.ResultMissingURL
	case ferrors.HasCategory(out.Err, ferrors.CategoryRemoteState):
		return metrics.ResultRemoteState
	default:
		return metrics.ResultNotReady
	}
}
