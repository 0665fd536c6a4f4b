package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePrompts = `
[default]
prompt = "You are a helpful assistant."

[pirate]
prompt = """
Answer as a pirate.
Keep it short.
"""
`

func TestLoadPrompt(t *testing.T) {
	path := writeFile(t, "prompts.toml", samplePrompts)

	got, err := LoadPrompt(path, "")
	require.NoError(t, err)
	assert.Equal(t, "You are a helpful assistant.", got)

	got, err = LoadPrompt(path, "pirate")
	require.NoError(t, err)
	assert.Contains(t, got, "Answer as a pirate.")

	_, err = LoadPrompt(path, "missing")
	assert.ErrorIs(t, err, ErrPromptNotFound)
}

func TestListPrompts(t *testing.T) {
	path := writeFile(t, "prompts.toml", samplePrompts)

	names, prompts, err := ListPrompts(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"default", "pirate"}, names)
	assert.Len(t, prompts, 2)
}
