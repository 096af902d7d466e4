package commands

import (
	"fmt"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/agentboot/internal/auth"
	"git.home.luguber.info/inful/agentboot/internal/config"
	"git.home.luguber.info/inful/agentboot/internal/git"
)

// ProbeCmd implements the 'probe' command.
type ProbeCmd struct {
	URL    string `arg:"" help:"Remote repository URL"`
	Branch string `short:"b" default:"main" help:"Branch to look for"`
	Heads  bool   `help:"Also list the remote branches"`
}

func (p *ProbeCmd) Run(g *Global, _ *CLI) error {
	prov := auth.NewProvisioner()
	creds := prov.Detect()
	url := prov.EffectiveURL(p.URL, creds)

	probe := git.NewProbe(func(u string) (transport.AuthMethod, error) {
		return prov.AuthMethod(u, creds)
	})

	branch := p.Branch
	if branch == "" {
		branch = config.DefaultBranch
	}
	state := git.State(g.Ctx, probe, url, branch)
	_, _ = fmt.Fprintf(g.Stdout, "%s %s: %s\n", git.Redact(url), branch, state)

	if !p.Heads {
		return nil
	}
	heads, err := probe.Heads(g.Ctx, url)
	if err != nil {
		return err
	}
	for _, h := range heads {
		_, _ = fmt.Fprintln(g.Stdout, h)
	}
	return nil
}
