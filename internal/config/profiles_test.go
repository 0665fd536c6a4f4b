package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

const sampleConf = `
[credentials.local]
host = "http://localhost:8000/v1"
api_key = "sk-local"

[credentials.remote]
host = "https://api.example.com/v1"
api_key = "$QQ_TEST_KEY"

[profile.default]
credentials = "local"
prompt = "default"

[profile.big]
model = "qwen3-235b"
credentials = "remote"
tools = ["fs.toml", "web.toml"]
structured_streaming = false

[profile.big.parameters]
temperature = 0.2
`

func TestLoadProfiles(t *testing.T) {
	t.Setenv("QQ_TEST_KEY", "sk-remote")
	path := writeFile(t, "conf.toml", sampleConf)

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	// Sorted by name.
	assert.Equal(t, "big", profiles[0].Name)
	assert.Equal(t, "default", profiles[1].Name)

	big := profiles[0]
	assert.Equal(t, "qwen3-235b", big.Model)
	assert.Equal(t, []string{"fs.toml", "web.toml"}, big.Tools)
	require.NotNil(t, big.StructuredStreaming)
	assert.False(t, *big.StructuredStreaming)
	assert.Equal(t, "https://api.example.com/v1", big.Credentials.Host)
	assert.Equal(t, "sk-remote", big.Credentials.APIKey, "env reference should be expanded")
	assert.Equal(t, 0.2, big.Parameters["temperature"])

	def := profiles[1]
	assert.Equal(t, "sk-local", def.Credentials.APIKey)
	assert.Equal(t, "default", def.PromptName)
	assert.Nil(t, def.StructuredStreaming)
}

func TestGetProfile(t *testing.T) {
	path := writeFile(t, "conf.toml", sampleConf)

	p, err := GetProfile(path, "")
	require.NoError(t, err)
	assert.Equal(t, "default", p.Name)

	_, err = GetProfile(path, "nope")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLoadProfiles_ScalarToolsValue(t *testing.T) {
	path := writeFile(t, "conf.toml", `
[credentials.c]
host = "http://h/v1"
api_key = "k"

[profile.p]
credentials = "c"
tools = "single.toml"
`)
	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, []string{"single.toml"}, profiles[0].Tools)
}

func TestLoadProfiles_UnknownCredentialsRef(t *testing.T) {
	path := writeFile(t, "conf.toml", `
[profile.p]
credentials = "ghost"
`)
	_, err := LoadProfiles(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `credentials "ghost"`)
}

func TestDefaultDir_HonorsXDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	assert.Equal(t, "/tmp/xdg/quick-query", DefaultDir())
}
