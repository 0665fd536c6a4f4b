package batch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Summarize {{.title | upper}} in one line."), 0o600))

	src, err := FromFile(path)
	require.NoError(t, err)

	got, err := src.Render(map[string]any{"title": "moby dick"})
	require.NoError(t, err)
	assert.Equal(t, "Summarize MOBY DICK in one line.", got)
}

func TestFromFile_MissingVariableFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("Hello {{.name}}"), 0o600))

	src, err := FromFile(path)
	require.NoError(t, err)

	_, err = src.Render(map[string]any{"other": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "name")
}

func TestFromField(t *testing.T) {
	src := FromField("prompt")

	got, err := src.Render(map[string]any{
		"prompt": "Translate {{.word}} to {{.lang}}.",
		"word":   "cat",
		"lang":   "German",
	})
	require.NoError(t, err)
	assert.Equal(t, "Translate cat to German.", got)

	_, err = src.Render(map[string]any{"word": "dog"})
	assert.ErrorContains(t, err, `no field "prompt"`)

	_, err = src.Render(map[string]any{"prompt": 42})
	assert.ErrorContains(t, err, "want string")
}

func TestFromField_CachesCompiledTemplates(t *testing.T) {
	ft := FromField("prompt").(*fieldTemplate)
	vars := map[string]any{"prompt": "say {{.x}}", "x": "hi"}

	for i := 0; i < 3; i++ {
		out, err := ft.Render(vars)
		require.NoError(t, err)
		assert.Equal(t, "say hi", out)
	}
	assert.Len(t, ft.cache, 1)
}

func TestFromFile_ParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.tmpl")
	require.NoError(t, os.WriteFile(path, []byte("{{.unclosed"), 0o600))

	_, err := FromFile(path)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "parse template"))
}
