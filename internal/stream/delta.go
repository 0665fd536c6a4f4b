package stream

import (
	"encoding/json"
	"fmt"
)

// Kind tags a finalized segment of one assistant turn.
type Kind int

const (
	KindContent Kind = iota
	KindReasoning
	KindToolCall
)

func (k Kind) String() string {
	switch k {
	case KindContent:
		return "content"
	case KindReasoning:
		return "reasoning"
	case KindToolCall:
		return "tool_call"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Delta is one inbound unit from the transport. At most one of the payload
// fields is set; a zero Delta carries nothing and is skipped.
type Delta struct {
	// Content is a fragment of user-visible assistant text.
	Content string

	// Reasoning is a fragment the provider already tagged as reasoning
	// (e.g. a reasoning_content field). Providers that inline reasoning
	// into Content via think tags go through the Splitter instead.
	Reasoning string

	// Tool is a fragment of a tool-call descriptor.
	Tool *ToolCallDelta
}

// ToolCallDelta carries zero or more fields of a streamed tool call.
type ToolCallDelta struct {
	ID        string
	Name      string
	Arguments string
}

// ToolCall is a completed tool-call descriptor. Arguments holds the
// concatenation of every argument fragment; it is only well-formed JSON once
// the governing response segment has ended.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// DecodeArguments parses the accumulated argument text. A decode failure here
// is the caller's signal that the model produced a malformed payload; it is
// reported, never swallowed.
func (t *ToolCall) DecodeArguments(v any) error {
	if err := json.Unmarshal([]byte(t.Arguments), v); err != nil {
		return fmt.Errorf("tool call %s: decode arguments: %w", t.Name, err)
	}
	return nil
}

// Segment is the unit the caller consumes: a maximal same-kind run, finalized.
// Text is set for content and reasoning segments, Call for tool calls.
type Segment struct {
	Kind Kind
	Text string
	Call *ToolCall
}

// FinalText returns the text of the last content segment, mirroring how a
// turn's answer is read out of the finalized set.
func FinalText(segs []Segment) (string, bool) {
	for i := len(segs) - 1; i >= 0; i-- {
		if segs[i].Kind == KindContent {
			return segs[i].Text, true
		}
	}
	return "", false
}

// FirstToolCall returns the first finalized tool call, if any.
func FirstToolCall(segs []Segment) (*ToolCall, bool) {
	for _, s := range segs {
		if s.Kind == KindToolCall && s.Call != nil {
			return s.Call, true
		}
	}
	return nil, false
}

// DeltaSource is a pull-based stream of deltas for one assistant turn.
// Next returns io.EOF after the final delta.
type DeltaSource interface {
	Next() (Delta, error)
}
