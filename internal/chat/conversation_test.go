package chat

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Refefer/quick-query/internal/llm"
)

func exchange(q, a string) []llm.Message {
	return []llm.Message{llm.UserMessage(q), llm.AssistantMessage(a)}
}

func TestConversation_UndoRedo(t *testing.T) {
	c := NewConversation("be brief")
	c.AddExchange(exchange("q1", "a1"))
	c.AddExchange(exchange("q2", "a2"))
	require.Len(t, c.Messages(), 5)

	require.True(t, c.Undo())
	assert.Len(t, c.Messages(), 3)
	assert.Equal(t, "a1", c.Messages()[2].Content)

	require.True(t, c.Redo())
	assert.Len(t, c.Messages(), 5)

	assert.False(t, c.Redo(), "redo stack should be empty again")

	require.True(t, c.Undo())
	c.AddExchange(exchange("q3", "a3"))
	assert.False(t, c.Redo(), "new exchange must invalidate redo")
}

func TestConversation_ResetKeepsSystemPrompt(t *testing.T) {
	c := NewConversation("be brief")
	c.AddExchange(exchange("q", "a"))
	c.Reset()

	msgs := c.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, 0, c.Turns())
}

func TestConversation_MessagesIsACopy(t *testing.T) {
	c := NewConversation("sys")
	c.AddExchange(exchange("q", "a"))

	msgs := append(c.Messages(), llm.UserMessage("scratch"))
	_ = msgs
	assert.Len(t, c.Messages(), 3)
}

func TestConversation_SaveLoadRoundTrip(t *testing.T) {
	c := NewConversation("sys")
	c.AddExchange(exchange("q1", "a1"))
	c.AddExchange([]llm.Message{
		llm.UserMessage("q2"),
		llm.ToolResultMessage("call_1", "42"),
		llm.AssistantMessage("a2"),
	})

	path := filepath.Join(t.TempDir(), "conv.jsonl")
	require.NoError(t, c.Save(path))

	got, err := LoadMessages(path)
	require.NoError(t, err)
	assert.Equal(t, c.Messages(), got)
}
