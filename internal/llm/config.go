package llm

import (
	"fmt"
	"strings"
	"time"
)

// Config carries the connection details for an OpenAI-compatible endpoint.
// BaseURL includes any version prefix (e.g. https://host/v1); ChatPath is
// appended verbatim.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string

	ChatPath   string
	ModelsPath string

	Timeout time.Duration
}

const (
	defaultChatPath   = "/chat/completions"
	defaultModelsPath = "/models"
	defaultTimeout    = 3 * time.Minute
)

func (c Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("llm: host is required")
	}
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("llm: api_key is required")
	}
	return nil
}

func (c Config) chatURL() string {
	p := c.ChatPath
	if p == "" {
		p = defaultChatPath
	}
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/") + p
}

func (c Config) modelsURL() string {
	p := c.ModelsPath
	if p == "" {
		p = defaultModelsPath
	}
	return strings.TrimRight(strings.TrimSpace(c.BaseURL), "/") + p
}
