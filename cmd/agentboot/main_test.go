package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bep/helpers/envhelpers"
	"github.com/go-git/go-git/v5"
	ggitcfg "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rogpeppe/go-internal/testscript"
)

func TestScripts(t *testing.T) {
	params := commonTestScriptsParam
	params.Dir = filepath.Join("testdata", "scripts")
	testscript.Run(t, params)
}

func TestMain(m *testing.M) {
	testscript.Main(m, map[string]func(){
		"agentboot": main,
	})
}

var commonTestScriptsParam = testscript.Params{
	Setup: func(env *testscript.Env) error {
		envhelpers.SetEnvVars(&env.Vars,
			"HOME", filepath.Join(env.WorkDir, "home"),
			"AGENT_WORKSPACE_ROOT", filepath.Join(env.WorkDir, "ws"),
			"AGENT_RUNTIME_DIR", filepath.Join(env.WorkDir, "runtime"),
			"AGENT_CONFIG_PATH", filepath.Join(env.WorkDir, "agent_config.json"),
		)
		return os.MkdirAll(filepath.Join(env.WorkDir, "home"), 0o755)
	},
	Cmds: map[string]func(ts *testscript.TestScript, neg bool, args []string){
		// mkremote creates $WORK/remotes/NAME.git with one commit pushed to
		// each named branch. Without branches the remote stays empty.
		"mkremote": func(ts *testscript.TestScript, neg bool, args []string) {
			if len(args) < 1 {
				ts.Fatalf("usage: mkremote NAME [BRANCH...]")
			}
			bare := ts.MkAbs(filepath.Join("remotes", args[0]+".git"))
			if _, err := git.PlainInit(bare, true); err != nil {
				ts.Fatalf("init %s: %v", bare, err)
			}
			if len(args) == 1 {
				return
			}

			work := ts.MkAbs(filepath.Join("remotes", args[0]+".seed"))
			repo, err := git.PlainInit(work, false)
			ts.Check(err)
			ts.Check(os.WriteFile(filepath.Join(work, "README.md"), []byte("# "+args[0]+"\n"), 0o644))
			wt, err := repo.Worktree()
			ts.Check(err)
			_, err = wt.Add("README.md")
			ts.Check(err)
			_, err = wt.Commit("init", &git.CommitOptions{Author: &object.Signature{Name: "t", Email: "t@example.com", When: time.Now()}})
			ts.Check(err)
			_, err = repo.CreateRemote(&ggitcfg.RemoteConfig{Name: "origin", URLs: []string{bare}})
			ts.Check(err)
			for _, b := range args[1:] {
				spec := ggitcfg.RefSpec("refs/heads/master:refs/heads/" + b)
				ts.Check(repo.Push(&git.PushOptions{RemoteName: "origin", RefSpecs: []ggitcfg.RefSpec{spec}}))
			}
		},
		// expand replaces $VARS in FILE with the script environment.
		"expand": func(ts *testscript.TestScript, neg bool, args []string) {
			if len(args) != 1 {
				ts.Fatalf("usage: expand FILE")
			}
			path := ts.MkAbs(args[0])
			data, err := os.ReadFile(path)
			ts.Check(err)
			ts.Check(os.WriteFile(path, []byte(os.Expand(string(data), ts.Getenv)), 0o644))
		},
	},
}
