package launch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
)

func testLauncher(env map[string]string, tty bool, haveScript bool) (*Launcher, *bytes.Buffer) {
	var out bytes.Buffer
	return &Launcher{
		Getenv:     func(k string) string { return env[k] },
		IsTerminal: func() bool { return tty },
		LookPath: func(string) (string, error) {
			if haveScript {
				return "/usr/bin/script", nil
			}
			return "", errors.New("not found")
		},
		Stdout: &out,
		Stderr: &out,
	}, &out
}

func TestPlan(t *testing.T) {
	l, _ := testLauncher(map[string]string{}, true, true)
	assert.True(t, l.Plan().Skip)

	l, _ = testLauncher(map[string]string{EnvCommand: "codex run"}, true, true)
	p := l.Plan()
	assert.True(t, p.Interactive)
	assert.False(t, p.Wrapped)
	assert.Equal(t, []string{"/bin/sh", "-c", "codex run"}, p.Argv)

	l, _ = testLauncher(map[string]string{EnvCommand: "codex run", EnvInteractive: "1"}, false, true)
	p = l.Plan()
	assert.True(t, p.Interactive)
	assert.True(t, p.Wrapped)
	assert.Equal(t, []string{"script", "-qfec", "codex run", "/dev/null"}, p.Argv)

	l, _ = testLauncher(map[string]string{EnvCommand: "codex run", EnvInteractive: "0"}, true, true)
	assert.False(t, l.Plan().Interactive)

	l, _ = testLauncher(map[string]string{EnvCommand: "codex run", EnvInteractive: "1"}, false, false)
	assert.False(t, l.Plan().Wrapped)
}

func TestIsBrowserLogin(t *testing.T) {
	assert.True(t, IsBrowserLogin("codex auth login"))
	assert.True(t, IsBrowserLogin("/usr/local/bin/codex auth login --port 1455"))
	assert.False(t, IsBrowserLogin("codex run"))
	assert.False(t, IsBrowserLogin("echo codex auth"))
}

func TestChildEnv(t *testing.T) {
	got := ChildEnv([]string{"CI=true", "PATH=/bin", "CODEX_QUIET_MODE=1", "CIRCLE=1"})
	assert.Equal(t, []string{"PATH=/bin", "CIRCLE=1"}, got)
}

func TestLaunchNonInteractivePrintsInstructions(t *testing.T) {
	l, out := testLauncher(map[string]string{EnvCommand: "codex run", EnvInteractive: "0"}, false, false)
	require.NoError(t, l.Launch(context.Background(), nil))
	assert.Contains(t, out.String(), "codex run")
	assert.Contains(t, out.String(), "CODEX_INTERACTIVE=0")
}

func TestLaunchRunsCommandWithHandoff(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "marker")
	l, _ := testLauncher(map[string]string{
		EnvCommand:     `printf '%s:%s' "$AGENT_INTERNET_MODE" "${CI-unset}" > "$MARKER"`,
		EnvInteractive: "1",
		EnvAPIKey:      "sk-test",
	}, true, false)

	err := l.Launch(context.Background(), []string{"AGENT_INTERNET_MODE=offline", "CI=true", "MARKER=" + marker})
	require.NoError(t, err)
	data, err := os.ReadFile(marker)
	require.NoError(t, err)
	assert.Equal(t, "offline:unset", string(data))
}

func TestLaunchNonZeroIsAdvisory(t *testing.T) {
	l, _ := testLauncher(map[string]string{EnvCommand: "exit 4", EnvInteractive: "1"}, true, false)
	err := l.Launch(context.Background(), nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryAdvisory))
}
