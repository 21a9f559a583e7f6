package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefault(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadParsesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: interp\njit_target: localhost:9090\nwatch: true\n"), 0o644))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "interp", cfg.Backend)
	assert.Equal(t, "localhost:9090", cfg.JitTarget)
	assert.True(t, cfg.Watch)
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dex.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend: [unterminated\n"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}
