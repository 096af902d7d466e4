package git

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

// originFetchSpec mirrors every remote branch under refs/remotes/origin.
const originFetchSpec = "+refs/heads/*:refs/remotes/origin/*"

// update forces an existing repository to origin/<branch>.
func (s *Synchronizer) update(ctx context.Context, repo *git.Repository, d Descriptor) (string, error) {
	slog.Info("Updating repository", logfields.Repository(d.Name), logfields.Path(d.LocalPath))

	// 1. Point origin at the declared URL and set upstream tracking
	if err := configureOrigin(repo, d); err != nil {
		return "", err
	}

	// 2. Fetch every branch, pruning stale remote refs
	if err := s.fetchOrigin(ctx, repo, d); err != nil {
		return "", err
	}

	// 3. Force the local branch onto origin/<branch>
	if err := alignBranch(repo, d); err != nil {
		return "", err
	}

	// 4. Fast-forward-only pull to confirm alignment
	if err := s.pullFastForward(ctx, repo, d); err != nil {
		return "", err
	}

	// 5. HEAD must equal origin/<branch>
	return verifyAligned(repo, d)
}

// configureOrigin adds or retargets origin and records branch tracking.
func configureOrigin(repo *git.Repository, d Descriptor) error {
	cfg, err := repo.Config()
	if err != nil {
		return fmt.Errorf("read repository config: %w", err)
	}

	remote, ok := cfg.Remotes[git.DefaultRemoteName]
	switch {
	case !ok:
		cfg.Remotes[git.DefaultRemoteName] = &ggitcfg.RemoteConfig{
			Name:  git.DefaultRemoteName,
			URLs:  []string{d.URL},
			Fetch: []ggitcfg.RefSpec{originFetchSpec},
		}
		slog.Debug("Added origin remote", logfields.Repository(d.Name), logfields.URL(Redact(d.URL)))
	case !slices.Equal(remote.URLs, []string{d.URL}):
		remote.URLs = []string{d.URL}
		remote.Fetch = []ggitcfg.RefSpec{originFetchSpec}
		slog.Debug("Retargeted origin remote", logfields.Repository(d.Name), logfields.URL(Redact(d.URL)))
	default:
		remote.Fetch = []ggitcfg.RefSpec{originFetchSpec}
	}

	cfg.Branches[d.Branch] = &ggitcfg.Branch{
		Name:   d.Branch,
		Remote: git.DefaultRemoteName,
		Merge:  plumbing.NewBranchReferenceName(d.Branch),
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("repository config: %w", err)
	}
	if err := repo.SetConfig(cfg); err != nil {
		return fmt.Errorf("write repository config: %w", err)
	}
	return nil
}

// fetchOrigin fetches all branches from origin with pruning and forced updates.
func (s *Synchronizer) fetchOrigin(ctx context.Context, repo *git.Repository, d Descriptor) error {
	am, err := s.authFor(d.URL)
	if err != nil {
		return err
	}
	fetchOpts := &git.FetchOptions{
		RemoteName: git.DefaultRemoteName,
		RefSpecs:   []ggitcfg.RefSpec{originFetchSpec},
		Auth:       am,
		Tags:       git.NoTags,
		Prune:      true,
		Force:      true,
	}
	err = s.withRetry(ctx, "fetch", d.Name, func() error {
		ferr := repo.FetchContext(ctx, fetchOpts)
		if ferr != nil && !errors.Is(ferr, git.NoErrAlreadyUpToDate) {
			return classifyTransportError("fetch", d.URL, ferr)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("git fetch: %w", err)
	}
	return nil
}

// alignBranch points refs/heads/<branch> at origin/<branch>, checks it out
// and hard-resets the worktree, discarding local divergence.
func alignBranch(repo *git.Repository, d Descriptor) error {
	localName := plumbing.NewBranchReferenceName(d.Branch)
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, d.Branch), true)
	if err != nil {
		return fmt.Errorf("remote ref origin/%s: %w", d.Branch, err)
	}

	if localRef, lerr := repo.Reference(localName, true); lerr == nil && localRef.Hash() != remoteRef.Hash() {
		if ok, aerr := isAncestor(repo, localRef.Hash(), remoteRef.Hash()); aerr == nil && !ok {
			slog.Warn("Discarding local commits not on the remote",
				logfields.Repository(d.Name), logfields.Branch(d.Branch),
				slog.String("from", shortHash(localRef.Hash())), slog.String("to", shortHash(remoteRef.Hash())))
		}
	}

	if err := repo.Storer.SetReference(plumbing.NewHashReference(localName, remoteRef.Hash())); err != nil {
		return fmt.Errorf("set %s: %w", localName, err)
	}

	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	if err := wt.Checkout(&git.CheckoutOptions{Branch: localName, Force: true}); err != nil {
		return fmt.Errorf("checkout %s: %w", d.Branch, err)
	}
	if err := wt.Reset(&git.ResetOptions{Commit: remoteRef.Hash(), Mode: git.HardReset}); err != nil {
		return fmt.Errorf("hard reset: %w", err)
	}
	return nil
}

// pullFastForward refuses anything but a fast-forward; an up-to-date branch is success.
func (s *Synchronizer) pullFastForward(ctx context.Context, repo *git.Repository, d Descriptor) error {
	am, err := s.authFor(d.URL)
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("worktree: %w", err)
	}
	err = wt.PullContext(ctx, &git.PullOptions{
		RemoteName:    git.DefaultRemoteName,
		ReferenceName: plumbing.NewBranchReferenceName(d.Branch),
		SingleBranch:  true,
		Auth:          am,
	})
	if err != nil && !errors.Is(err, git.NoErrAlreadyUpToDate) {
		if errors.Is(err, git.ErrNonFastForwardUpdate) {
			return &RemoteDivergedError{Op: "pull", URL: d.URL, Branch: d.Branch, Err: err}
		}
		return fmt.Errorf("git pull --ff-only: %w", classifyTransportError("pull", d.URL, err))
	}
	return nil
}

func verifyAligned(repo *git.Repository, d Descriptor) (string, error) {
	head, err := repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolve HEAD: %w", err)
	}
	remoteRef, err := repo.Reference(plumbing.NewRemoteReferenceName(git.DefaultRemoteName, d.Branch), true)
	if err != nil {
		return "", fmt.Errorf("remote ref origin/%s: %w", d.Branch, err)
	}
	if head.Name() != plumbing.NewBranchReferenceName(d.Branch) || head.Hash() != remoteRef.Hash() {
		return "", &RemoteDivergedError{
			Op:     "verify",
			URL:    d.URL,
			Branch: d.Branch,
			Err:    fmt.Errorf("HEAD %s at %s, origin/%s at %s", head.Name().Short(), shortHash(head.Hash()), d.Branch, shortHash(remoteRef.Hash())),
		}
	}
	return head.Hash().String(), nil
}

func isAncestor(repo *git.Repository, a, b plumbing.Hash) (bool, error) {
	if a == b {
		return true, nil
	}
	seen := map[plumbing.Hash]struct{}{}
	queue := []plumbing.Hash{b}
	for len(queue) > 0 {
		h := queue[0]
		queue = queue[1:]
		if h == a {
			return true, nil
		}
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		commit, err := repo.CommitObject(h)
		if err != nil {
			return false, err
		}
		queue = append(queue, commit.ParentHashes...)
	}
	return false, nil
}

func shortHash(h plumbing.Hash) string {
	return h.String()[:8]
}
