package commands

import (
	"fmt"
	"io"

	"git.home.luguber.info/inful/agentboot/internal/bootstrap"
	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
	"git.home.luguber.info/inful/agentboot/internal/git"
)

// RunCmd implements the default 'run' command.
type RunCmd struct {
	NoLaunch bool `name:"no-launch" help:"Stop after the handoff; skip the seed script and agent launch"`
}

func (r *RunCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	s := root.openSession()
	defer s.close()

	res, err := s.runner(bootstrap.Options{SkipLaunch: r.NoLaunch}).Run(g.Ctx, cfg)
	printOutcomes(g.Stdout, res.Outcomes)
	if err != nil {
		return err
	}
	if res.Ready {
		_, _ = fmt.Fprintf(g.Stdout, "network policy: %s\n", res.Policy.Mode)
	}
	return notReadyError(res.Outcomes)
}

// notReadyError returns the first per-repository failure, so the exit code
// reflects it under --strict-exit.
func notReadyError(outcomes []git.Outcome) error {
	for _, o := range outcomes {
		if o.Ready {
			continue
		}
		if o.Err != nil {
			return o.Err
		}
		return ferrors.RemoteStateError(o.Reason).ForRepository(o.Repository).Build()
	}
	return nil
}

func printOutcomes(w io.Writer, outcomes []git.Outcome) {
	for _, o := range outcomes {
		if o.Ready {
			_, _ = fmt.Fprintf(w, "%s: ready %s %s\n", o.Repository, shortCommit(o.Commit), o.Path)
			continue
		}
		_, _ = fmt.Fprintf(w, "%s: not ready (%s)\n", o.Repository, o.Reason)
	}
}

func shortCommit(c string) string {
	if len(c) > 8 {
		return c[:8]
	}
	return c
}
