// Package launch starts the interactive agent CLI at the end of a bootstrap.
package launch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/mattn/go-isatty"

	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

// Environment variables read by the launcher.
const (
	EnvCommand     = "CODEX_CLI_COMMAND"
	EnvInteractive = "CODEX_INTERACTIVE"
	EnvAPIKey      = "OPENAI_API_KEY"
)

// droppedEnv are removed from the child environment so the CLI runs with its
// interactive UX.
var droppedEnv = []string{"CI", "CODEX_QUIET_MODE"}

// Launcher runs CODEX_CLI_COMMAND attached to the terminal.
type Launcher struct {
	Getenv     func(string) string
	IsTerminal func() bool
	LookPath   func(string) (string, error)
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// New returns a Launcher bound to the current process.
func New() *Launcher {
	return &Launcher{
		Getenv:     os.Getenv,
		IsTerminal: stdoutIsTerminal,
		LookPath:   exec.LookPath,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}
}

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Plan is what Launch will do.
type Plan struct {
	Command     string
	Skip        bool
	Interactive bool
	Wrapped     bool
	Argv        []string
}

// Plan decides whether and how the command runs without running it.
func (l *Launcher) Plan() Plan {
	raw := strings.TrimSpace(l.Getenv(EnvCommand))
	if raw == "" {
		return Plan{Skip: true}
	}
	p := Plan{Command: raw}

	if flag := l.Getenv(EnvInteractive); flag != "" {
		p.Interactive = flag != "0"
	} else {
		p.Interactive = l.IsTerminal()
	}

	p.Argv = []string{"/bin/sh", "-c", raw}
	if !l.IsTerminal() {
		if _, err := l.LookPath("script"); err == nil {
			p.Wrapped = true
			p.Argv = []string{"script", "-qfec", raw, "/dev/null"}
		}
	}
	return p
}

// IsBrowserLogin reports whether command runs `codex auth login`, which needs
// no API key.
func IsBrowserLogin(command string) bool {
	words, err := shellquote.Split(command)
	if err != nil {
		words = strings.Fields(command)
	}
	for i := 0; i+2 < len(words); i++ {
		if filepath.Base(words[i]) == "codex" && words[i+1] == "auth" && words[i+2] == "login" {
			return true
		}
	}
	return false
}

// ChildEnv returns env without the variables that force a quiet CLI.
func ChildEnv(env []string) []string {
	out := make([]string, 0, len(env))
	for _, kv := range env {
		name, _, _ := strings.Cut(kv, "=")
		drop := false
		for _, d := range droppedEnv {
			if name == d {
				drop = true
				break
			}
		}
		if !drop {
			out = append(out, kv)
		}
	}
	return out
}

// Launch runs the planned command with env. Skips and non-zero exits are
// reported as advisory and never end the bootstrap.
func (l *Launcher) Launch(ctx context.Context, env []string) error {
	p := l.Plan()
	if p.Skip {
		slog.Info("CODEX_CLI_COMMAND not set; skipping agent launch")
		return nil
	}

	if l.Getenv(EnvAPIKey) == "" && !IsBrowserLogin(p.Command) {
		slog.Warn("OPENAI_API_KEY is not set; the CLI will try cached credentials",
			slog.String("hint", "run `codex auth login` inside the container if authentication fails"))
	}

	if !p.Interactive {
		_, _ = fmt.Fprintf(l.Stdout, "No TTY detected (or %s=0). Skipping interactive CLI launch.\n", EnvInteractive)
		_, _ = fmt.Fprintf(l.Stdout, "Re-run the container with -it, or exec into it and run manually:\n\n  %s\n", p.Command)
		return nil
	}

	slog.Info("Launching agent CLI", logfields.Command(shellquote.Join(p.Argv...)), slog.Bool("pty_wrapped", p.Wrapped))

	// #nosec G204 -- the command is the operator-provided CODEX_CLI_COMMAND
	cmd := exec.CommandContext(ctx, p.Argv[0], p.Argv[1:]...)
	cmd.Env = ChildEnv(env)
	cmd.Stdin = l.Stdin
	cmd.Stdout = l.Stdout
	cmd.Stderr = l.Stderr
	if err := cmd.Run(); err != nil {
		return ferrors.AdvisoryError("agent CLI exited non-zero (continuing)").
			WithCause(err).
			WithContext("command", p.Command).
			Build()
	}
	return nil
}
