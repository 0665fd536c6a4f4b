package llm

import (
	"context"

	"github.com/google/uuid"

	"github.com/Refefer/quick-query/internal/stream"
)

// Message is one entry of a conversation, in OpenAI-compatible wire shape so
// a saved conversation is valid request material as-is.
type Message struct {
	Role       string        `json:"role"`
	Content    string        `json:"content"`
	ToolCalls  []ToolCallRef `json:"tool_calls,omitempty"`
	ToolCallID string        `json:"tool_call_id,omitempty"`
}

// ToolCallRef is the assistant-side record of a requested tool invocation.
type ToolCallRef struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

func SystemMessage(text string) Message {
	return Message{Role: "system", Content: text}
}

func UserMessage(text string) Message {
	return Message{Role: "user", Content: text}
}

func AssistantMessage(text string) Message {
	return Message{Role: "assistant", Content: text}
}

// ToolRequestMessage records the assistant's request to run a tool. Providers
// occasionally omit the call id; generate one so the tool response can still
// reference it.
func ToolRequestMessage(call *stream.ToolCall) Message {
	id := call.ID
	if id == "" {
		id = "call_" + uuid.NewString()
		call.ID = id
	}
	return Message{
		Role: "assistant",
		ToolCalls: []ToolCallRef{{
			ID:   id,
			Type: "function",
			Function: FunctionCall{
				Name:      call.Name,
				Arguments: call.Arguments,
			},
		}},
	}
}

func ToolResultMessage(callID, content string) Message {
	return Message{Role: "tool", Content: content, ToolCallID: callID}
}

// ToolSpec is one entry of the request's tools array.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

type FunctionSpec struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"`
}

// Request describes one chat-completion round trip.
type Request struct {
	Messages []Message
	Tools    []ToolSpec
}

// ResponseStream is one assistant turn delivered as deltas. Next returns
// io.EOF after the final delta. Close releases the underlying connection and
// is safe to call at any point.
type ResponseStream interface {
	stream.DeltaSource
	Close() error
}

// Client issues streaming chat completions. Retry policy, if any, lives here
// or below; callers treat a failed request as a terminal failure of the turn.
type Client interface {
	Stream(ctx context.Context, req Request) (ResponseStream, error)
	ModelID(ctx context.Context) (string, error)
}
