package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/agentboot/internal/config"
)

func TestConfigWatcherReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agent_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"internet_access": {"mode": "offline"}}`), 0o600))

	modes := make(chan string, 8)
	cw, err := NewConfigWatcher(path, config.Options{WorkspaceRoot: dir}, func(_ context.Context, cfg *config.Config) error {
		modes <- cfg.InternetAccess.Mode
		return nil
	})
	require.NoError(t, err)
	cw.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, cw.Start(ctx))
	defer func() { _ = cw.Stop() }()

	// unrelated files are ignored
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{}`), 0o600))
	require.NoError(t, os.WriteFile(path, []byte(`{"internet_access": {"mode": "codex_common"}}`), 0o600))

	select {
	case mode := <-modes:
		require.Equal(t, "codex_common", mode)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload observed")
	}
}

func TestConfigWatcherStopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent_config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o600))

	cw, err := NewConfigWatcher(path, config.Options{}, func(context.Context, *config.Config) error { return nil })
	require.NoError(t, err)
	require.NoError(t, cw.Start(context.Background()))
	require.NoError(t, cw.Stop())
	require.NoError(t, cw.Stop())
}
