package git

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// testRemote is a bare repository seeded from a scratch working copy.
type testRemote struct {
	URL      string
	seed     *git.Repository
	seedPath string
	n        int
}

// newRemote creates a bare remote. With no branches it stays empty.
func newRemote(t *testing.T, branches ...string) *testRemote {
	t.Helper()
	tmp := t.TempDir()
	bare := filepath.Join(tmp, "remote.git")
	if _, err := git.PlainInit(bare, true); err != nil {
		t.Fatalf("init bare: %v", err)
	}
	r := &testRemote{URL: bare, seedPath: filepath.Join(tmp, "seed")}
	if len(branches) == 0 {
		return r
	}

	seed, err := git.PlainInit(r.seedPath, false)
	if err != nil {
		t.Fatalf("init seed: %v", err)
	}
	if _, err := seed.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{bare}}); err != nil {
		t.Fatalf("create remote: %v", err)
	}
	r.seed = seed
	r.commit(t, "README.md", "# seed\n")
	for _, b := range branches {
		r.push(t, b)
	}
	return r
}

// advance adds a commit and force-pushes it to branch, returning its hash.
func (r *testRemote) advance(t *testing.T, branch string) plumbing.Hash {
	t.Helper()
	h := r.commit(t, "CHANGELOG.md", time.Now().String())
	r.push(t, branch)
	return h
}

func (r *testRemote) commit(t *testing.T, name, content string) plumbing.Hash {
	t.Helper()
	r.n++
	return commitFile(t, r.seed, r.seedPath, name, content, "commit")
}

func (r *testRemote) push(t *testing.T, branch string) {
	t.Helper()
	spec := ggitcfg.RefSpec("+refs/heads/master:refs/heads/" + branch)
	err := r.seed.Push(&git.PushOptions{RemoteName: "origin", RefSpecs: []ggitcfg.RefSpec{spec}})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		t.Fatalf("push %s: %v", branch, err)
	}
}

// head returns the hash of branch on the remote.
func (r *testRemote) head(t *testing.T, branch string) plumbing.Hash {
	t.Helper()
	repo, err := git.PlainOpen(r.URL)
	if err != nil {
		t.Fatalf("open bare: %v", err)
	}
	ref, err := repo.Reference(plumbing.NewBranchReferenceName(branch), true)
	if err != nil {
		t.Fatalf("remote ref %s: %v", branch, err)
	}
	return ref.Hash()
}

func commitFile(t *testing.T, repo *git.Repository, dir, name, content, msg string) plumbing.Hash {
	t.Helper()
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	if _, err := wt.Add(name); err != nil {
		t.Fatalf("add %s: %v", name, err)
	}
	h, err := wt.Commit(msg, &git.CommitOptions{Author: &object.Signature{Name: "tester", Email: "t@example.com", When: time.Now()}})
	if err != nil {
		t.Fatalf("commit: %v", err)
	}
	return h
}

func localHead(t *testing.T, path string) *plumbing.Reference {
	t.Helper()
	repo, err := git.PlainOpen(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	head, err := repo.Head()
	if err != nil {
		t.Fatalf("head: %v", err)
	}
	return head
}
