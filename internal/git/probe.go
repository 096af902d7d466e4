package git

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/storage/memory"

	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

// AuthFunc returns transport credentials for a remote URL. A nil AuthFunc or
// a nil method means anonymous access.
type AuthFunc func(url string) (transport.AuthMethod, error)

// RemoteProber answers branch questions about a remote.
type RemoteProber interface {
	HasAnyBranch(ctx context.Context, url string) bool
	HasBranch(ctx context.Context, url, branch string) bool
}

// Probe lists remote heads without a local repository.
type Probe struct {
	auth AuthFunc
}

// NewProbe creates a Probe using auth for credentials.
func NewProbe(auth AuthFunc) *Probe {
	return &Probe{auth: auth}
}

// HasAnyBranch reports whether the remote lists at least one branch. Any
// error (transport, auth, empty repository) reads as false.
func (p *Probe) HasAnyBranch(ctx context.Context, url string) bool {
	heads, err := p.heads(ctx, url)
	if err != nil {
		slog.Debug("Remote listing failed", logfields.URL(Redact(url)), logfields.Error(err))
		return false
	}
	return len(heads) > 0
}

// HasBranch reports whether refs/heads/<branch> exists on the remote. An
// empty branch is false without contacting the remote.
func (p *Probe) HasBranch(ctx context.Context, url, branch string) bool {
	if branch == "" {
		return false
	}
	heads, err := p.heads(ctx, url)
	if err != nil {
		slog.Debug("Remote listing failed", logfields.URL(Redact(url)), logfields.Branch(branch), logfields.Error(err))
		return false
	}
	want := plumbing.NewBranchReferenceName(branch)
	for _, ref := range heads {
		if ref.Name() == want {
			return true
		}
	}
	return false
}

// State combines both queries in the order the synchronizer needs them.
func State(ctx context.Context, p RemoteProber, url, branch string) RemoteState {
	if !p.HasAnyBranch(ctx, url) {
		return NoBranches
	}
	if !p.HasBranch(ctx, url, branch) {
		return BranchMissing
	}
	return BranchPresent
}

// Heads lists the branch names on the remote.
func (p *Probe) Heads(ctx context.Context, url string) ([]string, error) {
	refs, err := p.heads(ctx, url)
	if err != nil {
		return nil, ClassifyGitError(err, "ls-remote", url)
	}
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, ref.Name().Short())
	}
	return names, nil
}

func (p *Probe) heads(ctx context.Context, url string) ([]*plumbing.Reference, error) {
	remote := git.NewRemote(memory.NewStorage(), &ggitcfg.RemoteConfig{
		Name: "origin",
		URLs: []string{url},
	})

	opts := &git.ListOptions{}
	if p.auth != nil {
		am, err := p.auth(url)
		if err != nil {
			return nil, err
		}
		opts.Auth = am
	}

	refs, err := remote.ListContext(ctx, opts)
	if err != nil {
		return nil, err
	}

	heads := make([]*plumbing.Reference, 0, len(refs))
	for _, ref := range refs {
		if ref.Type() == plumbing.SymbolicReference {
			continue
		}
		if strings.HasPrefix(ref.Name().String(), "refs/heads/") {
			heads = append(heads, ref)
		}
	}
	return heads, nil
}
