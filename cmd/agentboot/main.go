package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/agentboot/cmd/agentboot/commands"
	"git.home.luguber.info/inful/agentboot/internal/config"
	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
	"git.home.luguber.info/inful/agentboot/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	config.LoadEnvFiles()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("agentboot"),
		kong.Description("Bootstrap a development container: sync repositories, apply the network policy, launch the agent."),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(&commands.Global{Ctx: ctx, Stdout: os.Stdout}, cli)
	return ferrors.NewCLIErrorAdapter(cli.Verbose, cli.StrictExit, slog.Default()).HandleError(err)
}
