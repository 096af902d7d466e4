package bootstrap

import (
	"maps"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/agentboot/internal/netpolicy"
)

// Exported path variables.
const (
	EnvSpecPath   = "AGENT_SPEC_PATH"
	EnvSourcePath = "AGENT_SOURCE_PATH"
)

// HandoffFileName is the dotenv file written under the runtime directory.
const HandoffFileName = "agent.env"

// gitDefaults keep child git processes from prompting.
var gitDefaults = map[string]string{
	"GIT_TERMINAL_PROMPT": "0",
	"GIT_SSH_COMMAND":     "ssh -o StrictHostKeyChecking=accept-new",
}

// Handoff carries the values downstream processes receive. It is never
// written into the bootstrapper's own environment.
type Handoff struct {
	SpecPath   string
	SourcePath string
	Policy     netpolicy.Policy
}

// Vars returns the exported variables. Path variables are present only for
// repositories that synchronized.
func (h Handoff) Vars() map[string]string {
	vars := netpolicy.Exports(h.Policy)
	if h.SpecPath != "" {
		vars[EnvSpecPath] = h.SpecPath
	}
	if h.SourcePath != "" {
		vars[EnvSourcePath] = h.SourcePath
	}
	return vars
}

// Environ merges the handoff into base (KEY=VALUE form). Handoff values win;
// git defaults are added only when base does not set them.
func (h Handoff) Environ(base []string) []string {
	merged := make(map[string]string, len(base)+6)
	for _, kv := range base {
		k, v, ok := strings.Cut(kv, "=")
		if ok {
			merged[k] = v
		}
	}
	for k, v := range gitDefaults {
		if _, set := merged[k]; !set {
			merged[k] = v
		}
	}
	maps.Copy(merged, h.Vars())

	keys := slices.Sorted(maps.Keys(merged))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+merged[k])
	}
	return out
}

// Write persists the exported variables as a dotenv file.
func (h Handoff) Write(path string) error {
	return godotenv.Write(h.Vars(), path)
}

// ReadHandoff loads a dotenv handoff file.
func ReadHandoff(path string) (map[string]string, error) {
	return godotenv.Read(path)
}
