// Package seed runs the optional seed-data script once repositories are ready.
package seed

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"

	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

var (
	bashShebang = regexp.MustCompile(`^#!.*\b(bash|env\s+bash)\b`)
	pipefail    = regexp.MustCompile(`\bset\s+-o\s+pipefail\b`)
)

// Runner executes a seed script with the handoff environment.
type Runner struct {
	Stdout io.Writer
	Stderr io.Writer
	// BaseDir resolves relative script paths. Empty means the working directory.
	BaseDir string
}

// NewRunner returns a Runner attached to the process's stdout and stderr.
func NewRunner() *Runner {
	return &Runner{Stdout: os.Stdout, Stderr: os.Stderr}
}

// Resolve returns the absolute script path.
func (r *Runner) Resolve(script string) (string, error) {
	if filepath.IsAbs(script) {
		return filepath.Clean(script), nil
	}
	if r.BaseDir != "" {
		return filepath.Join(r.BaseDir, script), nil
	}
	return filepath.Abs(script)
}

// Interpreter picks bash when the shebang names it or the script relies on
// pipefail, and /bin/sh otherwise.
func Interpreter(content []byte) []string {
	first, _, _ := bytes.Cut(content, []byte("\n"))
	if bashShebang.Match(first) || pipefail.Match(content) {
		return []string{"/usr/bin/env", "bash"}
	}
	return []string{"/bin/sh"}
}

// Run executes script with env. An empty script is a no-op and a missing one
// is skipped with a warning. Every failure is returned as an advisory error.
func (r *Runner) Run(ctx context.Context, script string, env []string) error {
	if script == "" {
		return nil
	}
	path, err := r.Resolve(script)
	if err != nil {
		return ferrors.AdvisoryError("cannot resolve seed data script").WithCause(err).Build()
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("Seed data script configured but not found", logfields.Path(path))
			return nil
		}
		return ferrors.AdvisoryError("cannot read seed data script").
			WithCause(err).
			WithContext("path", path).
			Build()
	}

	argv := append(Interpreter(content), path)
	slog.Info("Running seed data script", logfields.Path(path), logfields.Command(argv[0]))

	// #nosec G204 -- the script path comes from the operator's configuration
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Env = env
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr
	if err := cmd.Run(); err != nil {
		return ferrors.AdvisoryError("seed data script failed (continuing)").
			WithCause(err).
			WithContext("path", path).
			Build()
	}
	return nil
}
