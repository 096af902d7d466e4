// Package netpolicy resolves the container's network-access mode and
// persists it for the sandbox runtime.
package netpolicy

import (
	"log/slog"
	"slices"
	"strings"

	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

// Mode is the effective network-access mode.
type Mode string

const (
	// ModeOffline denies all outbound traffic.
	ModeOffline Mode = "offline"
	// ModeCommon allows a curated set of common package and docs hosts.
	ModeCommon Mode = "codex_common"
	// ModeUnrestricted allows all outbound traffic. Requires the escalation gate.
	ModeUnrestricted Mode = "unrestricted"
)

// Modes lists every valid mode.
var Modes = []Mode{ModeOffline, ModeCommon, ModeUnrestricted}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool { return slices.Contains(Modes, m) }

func (m Mode) String() string { return string(m) }

// Policy is the resolved network policy.
type Policy struct {
	Mode         Mode     `json:"mode"`
	AllowedSites []string `json:"allowed_sites"`
}

// Resolve derives one effective policy from the requested mode and the
// unrestricted-mode gate. Unknown modes are configuration errors and are never
// coerced.
func Resolve(requested string, allowUnrestricted bool, sites []string) (Policy, error) {
	mode := Mode(requested)
	if mode == "" {
		mode = ModeOffline
	}

	switch mode {
	case ModeOffline, ModeCommon:
	case ModeUnrestricted:
		if !allowUnrestricted {
			slog.Warn("Unrestricted internet requested but not allowed; falling back to codex_common",
				logfields.Requested(requested), logfields.Mode(string(ModeCommon)))
			mode = ModeCommon
		}
	default:
		return Policy{}, ferrors.ConfigError("invalid internet_access.mode: "+requested).
			WithContext("mode", requested).
			WithHint("set internet_access.mode to one of "+strings.Join(modeNames(), ", ")).
			Build()
	}

	if sites == nil {
		sites = []string{}
	}
	return Policy{Mode: mode, AllowedSites: sites}, nil
}

func modeNames() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = string(m)
	}
	return names
}
