package commands

import (
	"context"
	"log/slog"

	"git.home.luguber.info/inful/agentboot/internal/bootstrap"
	"git.home.luguber.info/inful/agentboot/internal/config"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
	"git.home.luguber.info/inful/agentboot/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct{}

func (w *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, err := root.LoadConfig()
	if err != nil {
		return err
	}

	s := root.openSession()
	defer s.close()
	runner := s.runner(bootstrap.Options{SkipLaunch: true})

	if _, err := runner.ApplyPolicy(g.Ctx, cfg); err != nil {
		return err
	}

	cw, err := watch.NewConfigWatcher(cfg.Path, config.Options{WorkspaceRoot: root.WorkspaceRoot},
		func(ctx context.Context, next *config.Config) error {
			policy, err := runner.ApplyPolicy(ctx, next)
			if err != nil {
				return err
			}
			slog.Info("Network policy re-applied", logfields.Mode(policy.Mode.String()))
			return nil
		})
	if err != nil {
		return err
	}
	if err := cw.Start(g.Ctx); err != nil {
		return err
	}
	defer func() { _ = cw.Stop() }()

	<-g.Ctx.Done()
	slog.Info("Stopping watcher")
	return nil
}
