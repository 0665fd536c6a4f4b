// Package batch evaluates a prompt template over a stream of variable sets
// with bounded concurrency.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig"
)

// PromptSource produces the prompt for one variable set.
type PromptSource interface {
	Render(vars map[string]any) (string, error)
}

func parseTemplate(name, text string) (*template.Template, error) {
	return template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
}

type fileTemplate struct {
	tpl *template.Template
}

// FromFile compiles a prompt template from disk once, up front.
func FromFile(path string) (PromptSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("batch: read template: %w", err)
	}
	tpl, err := parseTemplate(filepath.Base(path), string(data))
	if err != nil {
		return nil, fmt.Errorf("batch: parse template %s: %w", path, err)
	}
	return &fileTemplate{tpl: tpl}, nil
}

func (f *fileTemplate) Render(vars map[string]any) (string, error) {
	var b strings.Builder
	if err := f.tpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("batch: render template: %w", err)
	}
	return b.String(), nil
}

type fieldTemplate struct {
	field string

	mu    sync.Mutex
	cache map[string]*template.Template
}

// FromField treats one field of each variable set as the template text
// itself. Identical texts share a compiled template; workers render
// concurrently so the cache is guarded.
func FromField(field string) PromptSource {
	return &fieldTemplate{field: field, cache: make(map[string]*template.Template)}
}

func (f *fieldTemplate) Render(vars map[string]any) (string, error) {
	raw, ok := vars[f.field]
	if !ok {
		return "", fmt.Errorf("batch: variables have no field %q", f.field)
	}
	text, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("batch: field %q is %T, want string", f.field, raw)
	}

	tpl, err := f.compiled(text)
	if err != nil {
		return "", fmt.Errorf("batch: parse field template: %w", err)
	}
	var b strings.Builder
	if err := tpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("batch: render template: %w", err)
	}
	return b.String(), nil
}

func (f *fieldTemplate) compiled(text string) (*template.Template, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tpl, ok := f.cache[text]; ok {
		return tpl, nil
	}
	tpl, err := parseTemplate(f.field, text)
	if err != nil {
		return nil, err
	}
	f.cache[text] = tpl
	return tpl, nil
}
