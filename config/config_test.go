package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Missing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, BackendFile, cfg.Storage.Backend)
	assert.Equal(t, "records.dat", cfg.Storage.Path)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, 60, cfg.Validation.NameMaxLength)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
storage:
  backend: memory
  sync_writes: true
log:
  level: debug
instrument: true
validation:
  max_age: 120
  genders: MFX
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.True(t, cfg.Storage.SyncWrites)
	assert.Equal(t, "records.dat", cfg.Storage.Path)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Instrument)
	assert.Equal(t, int16(120), cfg.Validation.MaxAge)
	assert.Equal(t, 60, cfg.Validation.NameMaxLength)
	assert.Equal(t, "MFX", cfg.Validation.Genders)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("storage: [\n"), 0644))
	_, err := Load(bad)
	assert.Error(t, err)

	backend := filepath.Join(dir, "backend.yaml")
	require.NoError(t, os.WriteFile(backend, []byte("storage:\n  backend: sql\n"), 0644))
	_, err = Load(backend)
	assert.Error(t, err)
}
