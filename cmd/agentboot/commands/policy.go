package commands

import (
	"fmt"
	"maps"
	"slices"

	"git.home.luguber.info/inful/agentboot/internal/bootstrap"
	"git.home.luguber.info/inful/agentboot/internal/netpolicy"
)

// PolicyCmd implements the 'policy' command.
type PolicyCmd struct{}

func (p *PolicyCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	s := root.openSession()
	defer s.close()

	policy, err := s.runner(bootstrap.Options{SkipLaunch: true}).ApplyPolicy(g.Ctx, cfg)
	if err != nil {
		return err
	}

	exports := netpolicy.Exports(policy)
	for _, k := range slices.Sorted(maps.Keys(exports)) {
		_, _ = fmt.Fprintf(g.Stdout, "%s=%s\n", k, exports[k])
	}
	return nil
}
