package version

import (
	"fmt"
	"runtime/debug"
)

// Version contains the application version information.
// This should be set via build-time ldflags in production:
// go build -ldflags "-X git.home.luguber.info/inful/agentboot/internal/version.Version=v0.3.0".
var Version = "unknown"

// BuildInfo contains additional build metadata.
var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String renders the version line printed by --version. Without ldflags the
// module version recorded by the Go toolchain is used when available.
func String() string {
	v := Version
	if v == "unknown" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
			v = info.Main.Version
		}
	}
	return fmt.Sprintf("agentboot %s (commit %s, built %s)", v, GitCommit, BuildTime)
}
