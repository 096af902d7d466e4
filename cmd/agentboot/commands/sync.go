package commands

import (
	"git.home.luguber.info/inful/agentboot/internal/bootstrap"
	"git.home.luguber.info/inful/agentboot/internal/config"
	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
)

// SyncCmd implements the 'sync' command.
type SyncCmd struct {
	Only string `name:"only" help:"Synchronize a single repository (spec|source)"`
}

func (c *SyncCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	s := root.openSession()
	defer s.close()

	descs := bootstrap.Descriptors(cfg, root.WorkspaceRoot)
	if c.Only != "" {
		filtered := descs[:0]
		for _, d := range descs {
			if d.Name == c.Only {
				filtered = append(filtered, d)
			}
		}
		descs = filtered
		if len(descs) == 0 {
			return ferrors.ConfigError("no repository named " + c.Only).
				WithContext("valid", []string{config.SlotSpec, config.SlotSource}).
				Build()
		}
	}

	outcomes := s.runner(bootstrap.Options{SkipLaunch: true}).SyncAll(g.Ctx, descs)
	printOutcomes(g.Stdout, outcomes)
	return notReadyError(outcomes)
}
