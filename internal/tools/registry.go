package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/Refefer/quick-query/internal/llm"
	"github.com/Refefer/quick-query/internal/stream"
)

// Tool is one callable function offered to the model.
type Tool struct {
	Name        string
	Description string
	Parameters  any
	Run         func(ctx context.Context, args json.RawMessage) (string, error)
}

var toolNameRe = regexp.MustCompile(`^[A-Za-z0-9_]{1,64}$`)

func (t Tool) validate() error {
	if !toolNameRe.MatchString(t.Name) {
		return fmt.Errorf("tool name must match [A-Za-z0-9_]{1,64}, got %q", t.Name)
	}
	if t.Description == "" {
		return fmt.Errorf("tool %s: description is required", t.Name)
	}
	if t.Run == nil {
		return fmt.Errorf("tool %s: run function is required", t.Name)
	}
	return nil
}

type entry struct {
	tool    Tool
	enabled bool
}

// Registry holds the tools available to a session. Registration order is
// preserved in the request payload; enabled state can be flipped at runtime.
type Registry struct {
	order   []string
	entries map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func (r *Registry) Register(t Tool) error {
	if err := t.validate(); err != nil {
		return err
	}
	if _, ok := r.entries[t.Name]; ok {
		return fmt.Errorf("duplicate tool name %s", t.Name)
	}
	r.order = append(r.order, t.Name)
	r.entries[t.Name] = &entry{tool: t, enabled: true}
	return nil
}

func (r *Registry) setEnabled(name string, on bool) error {
	e, ok := r.entries[name]
	if !ok {
		return fmt.Errorf("unknown tool %s (have: %v)", name, r.names())
	}
	e.enabled = on
	return nil
}

func (r *Registry) Enable(name string) error  { return r.setEnabled(name, true) }
func (r *Registry) Disable(name string) error { return r.setEnabled(name, false) }

func (r *Registry) names() []string {
	out := make([]string, 0, len(r.entries))
	for name := range r.entries {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Status reports each registered tool and whether it is enabled, in
// registration order.
type Status struct {
	Name    string
	Enabled bool
}

func (r *Registry) List() []Status {
	out := make([]Status, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, Status{Name: name, Enabled: r.entries[name].enabled})
	}
	return out
}

// Specs builds the request tools payload from the enabled descriptors.
// Returns nil when nothing is enabled so the field is omitted entirely.
func (r *Registry) Specs() []llm.ToolSpec {
	var out []llm.ToolSpec
	for _, name := range r.order {
		e := r.entries[name]
		if !e.enabled {
			continue
		}
		out = append(out, llm.ToolSpec{
			Type: "function",
			Function: llm.FunctionSpec{
				Name:        e.tool.Name,
				Description: e.tool.Description,
				Parameters:  e.tool.Parameters,
			},
		})
	}
	return out
}

// Invoke runs the requested tool and packages the outcome as a tool message.
// Failures are reported to the model as message content rather than aborting
// the turn, so it can correct a malformed call.
func (r *Registry) Invoke(ctx context.Context, call *stream.ToolCall) llm.Message {
	e, ok := r.entries[call.Name]
	if !ok || !e.enabled {
		log.Debug().Str("tool", call.Name).Msg("model requested unavailable tool")
		return llm.ToolResultMessage(call.ID, fmt.Sprintf("error: unknown tool %q", call.Name))
	}
	args := call.Arguments
	if args == "" {
		args = "{}"
	}
	result, err := e.tool.Run(ctx, json.RawMessage(args))
	if err != nil {
		log.Debug().Str("tool", call.Name).Err(err).Msg("tool invocation failed")
		return llm.ToolResultMessage(call.ID, fmt.Sprintf("error: %v", err))
	}
	return llm.ToolResultMessage(call.ID, result)
}
