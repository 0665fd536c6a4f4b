package config

import (
	"errors"
	"fmt"
	"sort"
)

// ErrPromptNotFound indicates the named system prompt is missing.
var ErrPromptNotFound = errors.New("prompt not found")

type promptSection struct {
	Prompt string `toml:"prompt"`
}

// LoadPrompt returns the named system prompt from a prompts file. Sections
// are named after the prompt, each carrying a single `prompt` key.
func LoadPrompt(path, name string) (string, error) {
	if name == "" {
		name = "default"
	}
	var sections map[string]promptSection
	if err := readTOML(path, &sections); err != nil {
		return "", err
	}
	sec, ok := sections[name]
	if !ok {
		return "", fmt.Errorf("%w: %q in %s", ErrPromptNotFound, name, path)
	}
	return sec.Prompt, nil
}

// ListPrompts returns every prompt in the file, keyed by section name, with
// names sorted for display.
func ListPrompts(path string) ([]string, map[string]string, error) {
	var sections map[string]promptSection
	if err := readTOML(path, &sections); err != nil {
		return nil, nil, err
	}
	names := make([]string, 0, len(sections))
	prompts := make(map[string]string, len(sections))
	for name, sec := range sections {
		names = append(names, name)
		prompts[name] = sec.Prompt
	}
	sort.Strings(names)
	return names, prompts, nil
}
