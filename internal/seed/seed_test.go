package seed

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
)

func TestInterpreter(t *testing.T) {
	cases := map[string][]string{
		"#!/bin/bash\necho hi\n":                {"/usr/bin/env", "bash"},
		"#!/usr/bin/env bash\necho hi\n":        {"/usr/bin/env", "bash"},
		"#!/bin/sh\nset -o pipefail\necho hi\n": {"/usr/bin/env", "bash"},
		"#!/bin/sh\necho hi\n":                  {"/bin/sh"},
		"echo hi\n":                             {"/bin/sh"},
	}
	for content, want := range cases {
		assert.Equal(t, want, Interpreter([]byte(content)), content)
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.sh")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestRunPassesEnvironment(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.txt")
	script := writeScript(t, "#!/bin/sh\nprintf '%s' \"$AGENT_SPEC_PATH\" > \"$OUT\"\n")

	var stdout, stderr bytes.Buffer
	r := &Runner{Stdout: &stdout, Stderr: &stderr}
	err := r.Run(context.Background(), script, []string{"AGENT_SPEC_PATH=/workspaces/spec", "OUT=" + out})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "/workspaces/spec", string(data))
}

func TestRunMissingScriptIsSkipped(t *testing.T) {
	r := &Runner{BaseDir: t.TempDir()}
	assert.NoError(t, r.Run(context.Background(), "missing.sh", nil))
	assert.NoError(t, r.Run(context.Background(), "", nil))
}

func TestRunFailureIsAdvisory(t *testing.T) {
	script := writeScript(t, "exit 3\n")
	var stderr bytes.Buffer
	err := (&Runner{Stdout: &stderr, Stderr: &stderr}).Run(context.Background(), script, nil)
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryAdvisory))
}

func TestResolve(t *testing.T) {
	r := &Runner{BaseDir: "/opt/agent"}
	got, err := r.Resolve("scripts/seed.sh")
	require.NoError(t, err)
	assert.Equal(t, "/opt/agent/scripts/seed.sh", got)

	got, err = r.Resolve("/srv/../srv/seed.sh")
	require.NoError(t, err)
	assert.Equal(t, "/srv/seed.sh", got)
}
