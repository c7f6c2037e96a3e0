package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
surfaces:
  mapping_path: surfaces.yaml
`))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, 2, cfg.Suite.MaxAttempts)
	assert.Equal(t, "file", cfg.Suite.LedgerBackend)

	set, err := cfg.ToleranceSet()
	require.NoError(t, err)
	assert.True(t, set.Price.IsZero())
}

func TestLoadFullConfig(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
app:
  log_level: debug
  http_addr: ":9981"
  artifact_dir: /tmp/artifacts
suite:
  max_attempts: 3
  retry_delay_seconds: 5
  ledger_backend: sqlite
surfaces:
  mapping_path: surfaces.yaml
notify:
  enabled: true
  ws_url: ws://localhost:8080/events
tolerance:
  price: "0.00002"
  quantity: "0.01"
  per_symbol:
    EURUSD:
      price: "0.00001"
`))
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Suite.MaxAttempts)
	assert.Equal(t, "sqlite", cfg.Suite.LedgerBackend)

	set, err := cfg.ToleranceSet()
	require.NoError(t, err)
	assert.Equal(t, "0.00002", set.Price.String())

	_, err = cfg.ToleranceProvider()
	require.NoError(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(writeConfig(t, `
surfaces:
  mapping_path: surfaces.yaml
suite:
  ledger_backend: redis
`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `
surfaces:
  mapping_path: surfaces.yaml
tolerance:
  price: "one tick"
`))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `
notify:
  enabled: true
`))
	assert.Error(t, err)
}
