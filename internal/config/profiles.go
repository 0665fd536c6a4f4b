package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

// Profile is one named endpoint configuration with its credentials resolved.
type Profile struct {
	Name                string
	Model               string
	PromptName          string
	Tools               []string
	StructuredStreaming *bool
	Parameters          map[string]any
	Credentials         Credentials
}

// Credentials holds connection secrets. Values in the TOML file may reference
// environment variables ($VAR or ${VAR}); they are expanded on load.
type Credentials struct {
	Host   string `toml:"host"`
	APIKey string `toml:"api_key"`
}

// ErrProfileNotFound indicates the requested profile section is missing.
var ErrProfileNotFound = errors.New("profile not found")

// StringList accepts either a bare string or an array of strings, so a
// profile can say `tools = "one.toml"` or `tools = ["a.toml", "b.toml"]`.
type StringList []string

func (s *StringList) UnmarshalTOML(v any) error {
	switch t := v.(type) {
	case string:
		*s = StringList{t}
	case []any:
		out := make(StringList, 0, len(t))
		for _, e := range t {
			str, ok := e.(string)
			if !ok {
				return fmt.Errorf("expected string, got %T", e)
			}
			out = append(out, str)
		}
		*s = out
	default:
		return fmt.Errorf("expected string or array of strings, got %T", v)
	}
	return nil
}

type profileSection struct {
	Model               string         `toml:"model"`
	Prompt              string         `toml:"prompt"`
	Tools               StringList     `toml:"tools"`
	StructuredStreaming *bool          `toml:"structured_streaming"`
	Credentials         string         `toml:"credentials"`
	Parameters          map[string]any `toml:"parameters"`
}

type confFile struct {
	Profile     map[string]profileSection `toml:"profile"`
	Credentials map[string]Credentials    `toml:"credentials"`
}

// DefaultDir returns the configuration directory, honoring XDG_CONFIG_HOME.
func DefaultDir() string {
	if x := strings.TrimSpace(os.Getenv("XDG_CONFIG_HOME")); x != "" {
		return filepath.Join(x, "quick-query")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "quick-query"
	}
	return filepath.Join(home, ".config", "quick-query")
}

func readTOML(path string, v any) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(expanded)
	if err != nil {
		return err
	}
	// Expand $VAR references before decoding so secrets can live in the
	// environment instead of the file.
	if _, err := toml.Decode(os.ExpandEnv(string(data)), v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func expandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// LoadProfiles reads every profile from the config file, resolving each
// credentials reference against the top-level credentials table. Profiles are
// returned sorted by name.
func LoadProfiles(path string) ([]Profile, error) {
	var file confFile
	if err := readTOML(path, &file); err != nil {
		return nil, err
	}

	out := make([]Profile, 0, len(file.Profile))
	for name, raw := range file.Profile {
		p := Profile{
			Name:                name,
			Model:               raw.Model,
			PromptName:          raw.Prompt,
			Tools:               []string(raw.Tools),
			StructuredStreaming: raw.StructuredStreaming,
			Parameters:          raw.Parameters,
		}
		if raw.Credentials != "" {
			creds, ok := file.Credentials[raw.Credentials]
			if !ok {
				return nil, fmt.Errorf("profile %s: credentials %q not defined", name, raw.Credentials)
			}
			p.Credentials = creds
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// GetProfile returns a single profile by name.
func GetProfile(path, name string) (Profile, error) {
	if name == "" {
		name = "default"
	}
	profiles, err := LoadProfiles(path)
	if err != nil {
		return Profile{}, err
	}
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("%w: %q in %s", ErrProfileNotFound, name, path)
}
