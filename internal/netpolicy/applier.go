package netpolicy

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

// Export names produced by Apply.
const (
	EnvInternetMode = "AGENT_INTERNET_MODE"
	EnvAllowedSites = "AGENT_ALLOWED_SITES"
)

// PolicyFileName is the file written under the runtime directory.
const PolicyFileName = "network_policy.json"

// Applier persists a resolved policy for the sandbox runtime.
type Applier struct {
	RuntimeDir string
}

// NewApplier returns an Applier writing into runtimeDir.
func NewApplier(runtimeDir string) *Applier {
	return &Applier{RuntimeDir: runtimeDir}
}

// Path is the policy file location.
func (a *Applier) Path() string {
	return filepath.Join(a.RuntimeDir, PolicyFileName)
}

// Apply writes the policy file (truncate and rewrite) and returns the
// environment exports describing it.
func (a *Applier) Apply(p Policy) (map[string]string, error) {
	if err := os.MkdirAll(a.RuntimeDir, 0o755); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to create runtime directory").
			WithContext("path", a.RuntimeDir).
			Build()
	}

	sites := p.AllowedSites
	if sites == nil {
		sites = []string{}
	}
	data, err := json.MarshalIndent(Policy{Mode: p.Mode, AllowedSites: sites}, "", "  ")
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryInternal, "failed to encode network policy").Build()
	}
	if err := os.WriteFile(a.Path(), append(data, '\n'), 0o644); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryFileSystem, "failed to write network policy").
			WithContext("path", a.Path()).
			Build()
	}

	slog.Info("Network policy applied", logfields.Mode(p.Mode.String()), logfields.Path(a.Path()),
		slog.Int("allowed_sites", len(sites)))

	return Exports(p), nil
}

// Exports returns the environment variables describing p.
func Exports(p Policy) map[string]string {
	return map[string]string{
		EnvInternetMode: p.Mode.String(),
		EnvAllowedSites: strings.Join(p.AllowedSites, ","),
	}
}

// Read loads a previously applied policy file.
func (a *Applier) Read() (Policy, error) {
	data, err := os.ReadFile(a.Path())
	if err != nil {
		return Policy{}, err
	}
	var p Policy
	if err := json.Unmarshal(data, &p); err != nil {
		return Policy{}, fmt.Errorf("decode %s: %w", a.Path(), err)
	}
	return p, nil
}
