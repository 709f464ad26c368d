package ffmpeg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeBinary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return path
}

func TestLocatePrefersEnvironment(t *testing.T) {
	env := fakeBinary(t)
	cfg := fakeBinary(t)
	t.Setenv(EnvPath, env)

	got, err := Locate(cfg)
	require.NoError(t, err)
	assert.Equal(t, env, got)
}

func TestLocateUsesConfiguredPath(t *testing.T) {
	cfg := fakeBinary(t)
	t.Setenv(EnvPath, "")

	got, err := Locate(cfg)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLocateRejectsBadPaths(t *testing.T) {
	t.Setenv(EnvPath, "")

	_, err := Locate(filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Locate(t.TempDir())
	assert.Error(t, err)
}

func TestLocateSearchesPath(t *testing.T) {
	bin := fakeBinary(t)
	t.Setenv(EnvPath, "")
	t.Setenv("PATH", filepath.Dir(bin))

	got, err := Locate("")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	t.Setenv("PATH", t.TempDir())
	_, err = Locate("")
	assert.ErrorIs(t, err, ErrNotFound)
}
