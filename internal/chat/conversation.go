package chat

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Refefer/quick-query/internal/llm"
)

// Conversation is the message history of an interactive session. The base
// holds the system prompt; every completed turn is kept as one exchange so
// undo and redo operate on whole turns.
type Conversation struct {
	base      []llm.Message
	exchanges [][]llm.Message
	undone    [][]llm.Message
}

func NewConversation(systemPrompt string) *Conversation {
	c := &Conversation{}
	if systemPrompt != "" {
		c.base = append(c.base, llm.SystemMessage(systemPrompt))
	}
	return c
}

// Messages returns a fresh slice of the full history. Callers may append to
// it freely without touching the conversation.
func (c *Conversation) Messages() []llm.Message {
	n := len(c.base)
	for _, ex := range c.exchanges {
		n += len(ex)
	}
	out := make([]llm.Message, 0, n)
	out = append(out, c.base...)
	for _, ex := range c.exchanges {
		out = append(out, ex...)
	}
	return out
}

// AddExchange records a completed turn and invalidates the redo stack.
func (c *Conversation) AddExchange(msgs []llm.Message) {
	if len(msgs) == 0 {
		return
	}
	c.exchanges = append(c.exchanges, msgs)
	c.undone = nil
}

// Undo removes the most recent exchange. It can be reapplied with Redo until
// a new exchange is added.
func (c *Conversation) Undo() bool {
	if len(c.exchanges) == 0 {
		return false
	}
	last := c.exchanges[len(c.exchanges)-1]
	c.exchanges = c.exchanges[:len(c.exchanges)-1]
	c.undone = append(c.undone, last)
	return true
}

func (c *Conversation) Redo() bool {
	if len(c.undone) == 0 {
		return false
	}
	last := c.undone[len(c.undone)-1]
	c.undone = c.undone[:len(c.undone)-1]
	c.exchanges = append(c.exchanges, last)
	return true
}

// Reset drops every exchange but keeps the system prompt.
func (c *Conversation) Reset() {
	c.exchanges = nil
	c.undone = nil
}

func (c *Conversation) Turns() int { return len(c.exchanges) }

// Save writes the history as JSON Lines, one message per line.
func (c *Conversation) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, msg := range c.Messages() {
		if err := enc.Encode(msg); err != nil {
			return fmt.Errorf("save conversation: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

// LoadMessages reads a JSON Lines conversation back into messages.
func LoadMessages(path string) ([]llm.Message, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	defer f.Close()

	var out []llm.Message
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		if len(sc.Bytes()) == 0 {
			continue
		}
		var msg llm.Message
		if err := json.Unmarshal(sc.Bytes(), &msg); err != nil {
			return nil, fmt.Errorf("load conversation: line %d: %w", line, err)
		}
		out = append(out, msg)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("load conversation: %w", err)
	}
	return out, nil
}
