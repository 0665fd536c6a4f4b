package tools

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tools.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadManifest(t *testing.T) {
	path := writeManifest(t, `
[clock]

[read_file]
root = "/srv/data"
max_bytes = 1024

[http_get]
timeout = "10s"
`)
	reg := NewRegistry()
	require.NoError(t, LoadManifest(reg, path))

	list := reg.List()
	require.Len(t, list, 3)
	// File order, all enabled.
	assert.Equal(t, "clock", list[0].Name)
	assert.Equal(t, "read_file", list[1].Name)
	assert.Equal(t, "http_get", list[2].Name)
	for _, s := range list {
		assert.True(t, s.Enabled, s.Name)
	}
}

func TestLoadManifest_UnknownTool(t *testing.T) {
	path := writeManifest(t, "[warp_drive]\n")
	err := LoadManifest(NewRegistry(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown tool "warp_drive"`)
	assert.Contains(t, err.Error(), "calculator", "error should list the available tools")
}

func TestLoadManifest_DuplicateAcrossFiles(t *testing.T) {
	reg := NewRegistry()
	first := writeManifest(t, "[clock]\n")
	require.NoError(t, LoadManifest(reg, first))

	second := writeManifest(t, "[clock]\n")
	err := LoadManifest(reg, second)
	assert.ErrorContains(t, err, "duplicate tool name clock")
}

func TestDurationUnmarshal(t *testing.T) {
	var d duration
	require.NoError(t, d.UnmarshalText([]byte("90s")))
	assert.Equal(t, 90*time.Second, time.Duration(d))

	assert.Error(t, d.UnmarshalText([]byte("soon")))
}
