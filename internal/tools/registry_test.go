package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Refefer/quick-query/internal/stream"
)

func echoTool(name string) Tool {
	return Tool{
		Name:        name,
		Description: "echoes its arguments back",
		Parameters:  schemaFor[struct{}](),
		Run: func(_ context.Context, args json.RawMessage) (string, error) {
			return string(args), nil
		},
	}
}

func TestRegistry_RegisterValidation(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool("echo")))

	err := reg.Register(echoTool("echo"))
	assert.ErrorContains(t, err, "duplicate tool name")

	err = reg.Register(echoTool("not a name"))
	assert.ErrorContains(t, err, "tool name must match")
}

func TestRegistry_SpecsFollowEnabledState(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool("first")))
	require.NoError(t, reg.Register(echoTool("second")))

	specs := reg.Specs()
	require.Len(t, specs, 2)
	assert.Equal(t, "first", specs[0].Function.Name)
	assert.Equal(t, "function", specs[0].Type)

	require.NoError(t, reg.Disable("first"))
	specs = reg.Specs()
	require.Len(t, specs, 1)
	assert.Equal(t, "second", specs[0].Function.Name)

	require.NoError(t, reg.Enable("first"))
	assert.Len(t, reg.Specs(), 2)

	assert.ErrorContains(t, reg.Enable("ghost"), "unknown tool")
}

func TestRegistry_Invoke(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool("echo")))
	require.NoError(t, reg.Register(Tool{
		Name:        "boom",
		Description: "always fails for testing",
		Parameters:  schemaFor[struct{}](),
		Run: func(context.Context, json.RawMessage) (string, error) {
			return "", fmt.Errorf("kaput")
		},
	}))

	msg := reg.Invoke(context.Background(), &stream.ToolCall{ID: "c1", Name: "echo", Arguments: `{"a":1}`})
	assert.Equal(t, "tool", msg.Role)
	assert.Equal(t, "c1", msg.ToolCallID)
	assert.Equal(t, `{"a":1}`, msg.Content)

	msg = reg.Invoke(context.Background(), &stream.ToolCall{ID: "c2", Name: "boom"})
	assert.Equal(t, "error: kaput", msg.Content)

	msg = reg.Invoke(context.Background(), &stream.ToolCall{ID: "c3", Name: "ghost"})
	assert.Contains(t, msg.Content, `unknown tool "ghost"`)

	// Empty arguments decode as an empty object.
	msg = reg.Invoke(context.Background(), &stream.ToolCall{ID: "c4", Name: "echo"})
	assert.Equal(t, "{}", msg.Content)
}

func TestRegistry_List(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(echoTool("a")))
	require.NoError(t, reg.Register(echoTool("b")))
	require.NoError(t, reg.Disable("a"))

	assert.Equal(t, []Status{{Name: "a", Enabled: false}, {Name: "b", Enabled: true}}, reg.List())
}
