package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLocalConfig(t *testing.T) {
	dir := t.TempDir()
	body := `# comment: backend: mysql
backend: dolt
db: ./data
actor: mika
id:
  prefix: soup
  length: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o600))

	cfg := LoadLocalConfig(dir)
	assert.Equal(t, "dolt", cfg.Backend)
	assert.Equal(t, "./data", cfg.DB)
	assert.Equal(t, "mika", cfg.Actor)
	assert.Equal(t, "soup", cfg.ID.Prefix)
	assert.Equal(t, 5, cfg.ID.Length)
}

func TestLoadLocalConfigMissingOrBroken(t *testing.T) {
	dir := t.TempDir()
	cfg := LoadLocalConfig(dir)
	require.NotNil(t, cfg)
	assert.Equal(t, "", cfg.Backend)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("id: [\n"), 0o600))
	cfg = LoadLocalConfig(dir)
	require.NotNil(t, cfg)
	assert.Equal(t, 0, cfg.ID.Length)
}

func TestWriteLocalConfigRoundTripAndKeep(t *testing.T) {
	dir := t.TempDir()
	in := &LocalConfig{Backend: "sqlite", Actor: "ana"}
	in.ID.Prefix = "rc"
	in.ID.Length = 6
	require.NoError(t, WriteLocalConfig(dir, in))

	out := LoadLocalConfig(dir)
	assert.Equal(t, in, out)

	other := &LocalConfig{Backend: "mysql"}
	require.NoError(t, WriteLocalConfig(dir, other))
	assert.Equal(t, "sqlite", LoadLocalConfig(dir).Backend, "existing file must not be overwritten")
}
