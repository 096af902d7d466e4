package netpolicy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name      string
		requested string
		allow     bool
		want      Mode
	}{
		{"empty defaults offline", "", false, ModeOffline},
		{"offline", "offline", false, ModeOffline},
		{"common", "codex_common", false, ModeCommon},
		{"unrestricted gated", "unrestricted", false, ModeCommon},
		{"unrestricted allowed", "unrestricted", true, ModeUnrestricted},
		{"gate irrelevant for offline", "offline", true, ModeOffline},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Resolve(tc.requested, tc.allow, nil)
			require.NoError(t, err)
			assert.Equal(t, tc.want, p.Mode)
			assert.NotNil(t, p.AllowedSites)
		})
	}
}

func TestResolveRejectsUnknownMode(t *testing.T) {
	_, err := Resolve("bogus", true, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
}

func TestResolveCarriesSites(t *testing.T) {
	p, err := Resolve("codex_common", false, []string{"pypi.org", "go.dev"})
	require.NoError(t, err)
	assert.Equal(t, []string{"pypi.org", "go.dev"}, p.AllowedSites)
}

func TestApplyWritesPolicyAndExports(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "runtime")
	a := NewApplier(dir)

	exports, err := a.Apply(Policy{Mode: ModeCommon, AllowedSites: []string{"pypi.org", "go.dev"}})
	require.NoError(t, err)
	assert.Equal(t, "codex_common", exports[EnvInternetMode])
	assert.Equal(t, "pypi.org,go.dev", exports[EnvAllowedSites])

	data, err := os.ReadFile(filepath.Join(dir, PolicyFileName))
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"codex_common","allowed_sites":["pypi.org","go.dev"]}`, string(data))

	// Re-applying rewrites the file rather than appending.
	_, err = a.Apply(Policy{Mode: ModeOffline})
	require.NoError(t, err)
	got, err := a.Read()
	require.NoError(t, err)
	assert.Equal(t, ModeOffline, got.Mode)
	assert.Empty(t, got.AllowedSites)

	data, err = os.ReadFile(a.Path())
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"offline","allowed_sites":[]}`, string(data))
}

func TestApplyFailsOnUnwritableRuntime(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o600))

	_, err := NewApplier(filepath.Join(blocker, "runtime")).Apply(Policy{Mode: ModeOffline})
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryFileSystem))
}
