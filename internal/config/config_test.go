package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.True(t, cfg.Frontend.Enabled)
	assert.Equal(t, "frontend", cfg.Frontend.Dir)
	assert.Equal(t, "data/fixtrack.db", cfg.Database.Path)
	assert.True(t, cfg.Seed.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	// given
	path := writeConfigFile(t, `
addr: ":9999"
db:
  path: "custom/location.db"
frontend:
  enabled: false
seed:
  enabled: false
`)

	// when
	cfg, err := Load(path)

	// then
	require.NoError(t, err)
	assert.Equal(t, ":9999", cfg.Addr)
	assert.Equal(t, "custom/location.db", cfg.Database.Path)
	assert.False(t, cfg.Frontend.Enabled)
	assert.False(t, cfg.Seed.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	// given
	path := writeConfigFile(t, `
db:
  path: "from-file.db"
`)
	t.Setenv("FIXTRACK_DB_PATH", "from-env.db")

	// when
	cfg, err := Load(path)

	// then
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Database.Path)
}
