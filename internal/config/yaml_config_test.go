package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateYamlKey(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
		value   string
		want    string
	}{
		{
			name:    "append to empty",
			content: "",
			key:     "actor",
			value:   "mika",
			want:    "actor: mika",
		},
		{
			name:    "replace existing",
			content: "backend: sqlite\nactor: old",
			key:     "backend",
			value:   "mysql",
			want:    "backend: mysql\nactor: old",
		},
		{
			name:    "uncomment",
			content: "# tree.strict: false\nactor: a",
			key:     "tree.strict",
			value:   "TRUE",
			want:    "tree.strict: true\nactor: a",
		},
		{
			name:    "keeps indent",
			content: "  serve.addr: :80",
			key:     "serve.addr",
			value:   ":9090",
			want:    `  serve.addr: ":9090"`,
		},
		{
			name:    "append after blank line",
			content: "actor: a\n",
			key:     "id.length",
			value:   "8",
			want:    "actor: a\n\nid.length: 8",
		},
		{
			name:    "similar key untouched",
			content: "dolt.path: x",
			key:     "dolt.path-extra",
			value:   "y",
			want:    "dolt.path: x\n\ndolt.path-extra: y",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, updateYamlKey(tt.content, tt.key, tt.value))
		})
	}
}

func TestFormatYamlValue(t *testing.T) {
	tests := map[string]string{
		"true":       "true",
		"False":      "false",
		"42":         "42",
		"-1.5":       "-1.5",
		"30s":        "30s",
		"plain":      "plain",
		"a: b":       `"a: b"`,
		"#tag":       `"#tag"`,
		" padded":    `" padded"`,
		"":           `""`,
		"chef@x.org": `"chef@x.org"`,
	}
	for in, want := range tests {
		assert.Equal(t, want, formatYamlValue(in), "formatYamlValue(%q)", in)
	}
}

func TestIsKnownKey(t *testing.T) {
	assert.True(t, IsKnownKey("tree.strict"))
	assert.True(t, IsKnownKey("dolt.committer-email"))
	assert.False(t, IsKnownKey("mysql.password"))
	assert.False(t, IsKnownKey("tree"))
}

func TestSetYamlConfigCreatesFile(t *testing.T) {
	dir := inTempProject(t)
	require.NoError(t, Initialize())

	require.NoError(t, SetYamlConfig("backend", "memory"))

	data, err := os.ReadFile(filepath.Join(dir, DirName, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "backend: memory\n", string(data))
	assert.Equal(t, "memory", GetYamlConfig("backend"))

	require.NoError(t, Initialize())
	assert.Equal(t, "memory", GetString("backend"))
}

func TestSetYamlConfigUpdatesNearestFile(t *testing.T) {
	dir := inTempProject(t)
	writeProjectConfig(t, dir, "# generated\nactor: a\n")
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	t.Chdir(sub)

	require.NoError(t, SetYamlConfig("actor", "b"))

	data, err := os.ReadFile(filepath.Join(dir, DirName, "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "# generated\nactor: b\n", string(data))
	_, err = os.Stat(filepath.Join(sub, DirName))
	assert.True(t, os.IsNotExist(err))
}

func TestSetYamlConfigRejectsUnknownKey(t *testing.T) {
	inTempProject(t)
	err := SetYamlConfig("no.such.key", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown config key")
}

func TestGetYamlConfigBeforeInitialize(t *testing.T) {
	ResetForTesting()
	assert.Equal(t, "", GetYamlConfig("backend"))
}
