package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inTempProject chdirs into a fresh directory for the test.
func inTempProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	ResetForTesting()
	t.Cleanup(ResetForTesting)
	return dir
}

func writeProjectConfig(t *testing.T, dir, body string) string {
	t.Helper()
	dataDir := filepath.Join(dir, DirName)
	require.NoError(t, os.MkdirAll(dataDir, 0o750))
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "config.yaml"), []byte(body), 0o600))
	return dataDir
}

func TestDefaults(t *testing.T) {
	inTempProject(t)
	require.NoError(t, Initialize())

	assert.Equal(t, "sqlite", GetString("backend"))
	assert.Equal(t, "rc", GetString("id.prefix"))
	assert.Equal(t, 6, GetInt("id.length"))
	assert.False(t, GetBool("tree.strict"))
	assert.Equal(t, ":8080", GetString("serve.addr"))
	assert.Equal(t, 15*time.Second, GetDuration("serve.read-timeout"))
	assert.Equal(t, 3306, GetInt("mysql.port"))
	assert.Equal(t, "", ConfigFileUsed())
}

func TestEnvironmentOverrides(t *testing.T) {
	inTempProject(t)
	t.Setenv("CE_BACKEND", "memory")
	t.Setenv("CE_TREE_MAX_DEPTH", "12")
	t.Setenv("CE_SERVE_READ_TIMEOUT", "2s")
	t.Setenv("CE_DOLT_COMMITTER_NAME", "chef")
	require.NoError(t, Initialize())

	assert.Equal(t, "memory", GetString("backend"))
	assert.Equal(t, 12, GetInt("tree.max-depth"))
	assert.Equal(t, 2*time.Second, GetDuration("serve.read-timeout"))
	assert.Equal(t, "chef", GetString("dolt.committer-name"))
}

func TestProjectConfigDiscoveredFromSubdirectory(t *testing.T) {
	dir := inTempProject(t)
	writeProjectConfig(t, dir, "backend: mysql\nid:\n  prefix: soup\nmysql.host: db.internal\n")

	sub := filepath.Join(dir, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)
	require.NoError(t, Initialize())

	assert.Equal(t, "mysql", GetString("backend"))
	assert.Equal(t, "soup", GetString("id.prefix"))
	assert.Equal(t, "db.internal", GetString("mysql.host"))
	assert.Equal(t, evalPath(t, filepath.Join(dir, DirName, "config.yaml")), evalPath(t, ConfigFileUsed()))
}

func TestEnvBeatsConfigFile(t *testing.T) {
	dir := inTempProject(t)
	writeProjectConfig(t, dir, "backend: mysql\n")
	t.Setenv("CE_BACKEND", "sqlite")
	require.NoError(t, Initialize())

	assert.Equal(t, "sqlite", GetString("backend"))
}

func TestSetOverridesEverything(t *testing.T) {
	inTempProject(t)
	t.Setenv("CE_ACTOR", "env-actor")
	require.NoError(t, Initialize())

	Set("actor", "flag-actor")
	assert.Equal(t, "flag-actor", Actor())
}

func TestActorFallsBackToUser(t *testing.T) {
	inTempProject(t)
	t.Setenv("USER", "mika")
	require.NoError(t, Initialize())
	assert.Equal(t, "mika", Actor())

	t.Setenv("USER", "")
	assert.Equal(t, "anonymous", Actor())
}

func TestMalformedProjectConfig(t *testing.T) {
	dir := inTempProject(t)
	writeProjectConfig(t, dir, "backend: [unterminated\n")

	err := Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml")
}

func TestStoreSettings(t *testing.T) {
	dir := inTempProject(t)
	dataDir := writeProjectConfig(t, dir, "id:\n  length: 8\nmysql:\n  user: chef\n  tls: true\n")
	require.NoError(t, Initialize())

	s := Store()
	assert.Equal(t, "sqlite", s.Backend)
	assert.Equal(t, evalPath(t, filepath.Join(dataDir, "recipes.db")), evalPath(t, s.Path))
	assert.Equal(t, 8, s.IDLength)
	assert.Equal(t, "chef", s.MySQL.User)
	assert.True(t, s.MySQL.TLS)
	assert.Equal(t, "collaboreats", s.Dolt.Database)

	Set("backend", "Dolt")
	s = Store()
	assert.Equal(t, "dolt", s.Backend)
	assert.Equal(t, evalPath(t, filepath.Join(dataDir, "dolt")), evalPath(t, s.Path))

	Set("db", "/tmp/elsewhere.db")
	assert.Equal(t, "/tmp/elsewhere.db", Store().Path)
}

func TestDataDirWithoutProject(t *testing.T) {
	inTempProject(t)
	require.NoError(t, Initialize())

	assert.Equal(t, DirName, DataDir())
	_, err := FindDataDir()
	assert.Error(t, err)
}

func TestGettersInitializeLazily(t *testing.T) {
	inTempProject(t)
	assert.Equal(t, "rc", GetString("id.prefix"))
}

// evalPath resolves symlinks (macOS TempDir lives under /private).
func evalPath(t *testing.T, p string) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(filepath.Dir(p))
	if err != nil {
		return p
	}
	return filepath.Join(dir, filepath.Base(p))
}
