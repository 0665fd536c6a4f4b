package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Refefer/quick-query/internal/llm"
	"github.com/Refefer/quick-query/internal/stream"
	"github.com/Refefer/quick-query/internal/tools"
)

// ErrExit signals that the user asked to leave the session.
var ErrExit = errors.New("exit requested")

// Session ties a conversation to a client, dispatcher and tool registry for
// interactive use.
type Session struct {
	Conv       *Conversation
	Client     llm.Client
	Tools      *tools.Registry
	Dispatcher *stream.Dispatcher
	Sink       stream.Sink
	Re2        bool

	// Optional REPL hooks. Each toggles a front-end concern and returns a
	// short status line.
	TogglePretty    func() string
	ToggleMultiline func() string
}

// Ask runs one user turn and records the completed exchange.
func (s *Session) Ask(ctx context.Context, message string) (string, error) {
	prompt := message
	if s.Re2 {
		prompt = Re2Prompt(message)
	}
	user := llm.UserMessage(prompt)
	history := append(s.Conv.Messages(), user)

	produced, final, err := RunTurn(ctx, s.Client, s.Tools, s.Dispatcher, s.Sink, history)
	if err != nil {
		return "", err
	}

	exchange := make([]llm.Message, 0, len(produced)+1)
	exchange = append(exchange, user)
	exchange = append(exchange, produced...)
	s.Conv.AddExchange(exchange)
	return final, nil
}

const helpText = `Commands:
  /reset              drop the conversation, keep the system prompt
  /undo               remove the last exchange
  /redo               restore the last undone exchange
  /save <path>        write the conversation as JSON lines
  /tools              list tools and their state
  /tools on <name>    enable a tool
  /tools off <name>   disable a tool
  /pretty             toggle markdown rendering
  /multiline          toggle multiline input (finish with a lone .)
  /help               show this help
  /exit               leave`

// Command executes a slash command and returns the text to display. ErrExit
// is returned for /exit.
func (s *Session) Command(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty command")
	}
	switch fields[0] {
	case "/exit", "/quit":
		return "", ErrExit
	case "/help":
		return helpText, nil
	case "/reset":
		s.Conv.Reset()
		return "conversation reset", nil
	case "/undo":
		if !s.Conv.Undo() {
			return "nothing to undo", nil
		}
		return "removed last exchange", nil
	case "/redo":
		if !s.Conv.Redo() {
			return "nothing to redo", nil
		}
		return "restored last exchange", nil
	case "/save":
		if len(fields) != 2 {
			return "", fmt.Errorf("usage: /save <path>")
		}
		if err := s.Conv.Save(fields[1]); err != nil {
			return "", err
		}
		return "saved to " + fields[1], nil
	case "/tools":
		return s.toolsCommand(fields[1:])
	case "/pretty":
		if s.TogglePretty == nil {
			return "", fmt.Errorf("/pretty is not available here")
		}
		return s.TogglePretty(), nil
	case "/multiline":
		if s.ToggleMultiline == nil {
			return "", fmt.Errorf("/multiline is not available here")
		}
		return s.ToggleMultiline(), nil
	default:
		return "", fmt.Errorf("unknown command %s, try /help", fields[0])
	}
}

func (s *Session) toolsCommand(args []string) (string, error) {
	if s.Tools == nil {
		return "no tools configured", nil
	}
	switch {
	case len(args) == 0:
		list := s.Tools.List()
		if len(list) == 0 {
			return "no tools configured", nil
		}
		var b strings.Builder
		for _, st := range list {
			state := "on"
			if !st.Enabled {
				state = "off"
			}
			fmt.Fprintf(&b, "%-20s %s\n", st.Name, state)
		}
		return strings.TrimRight(b.String(), "\n"), nil
	case len(args) == 2 && args[0] == "on":
		if err := s.Tools.Enable(args[1]); err != nil {
			return "", err
		}
		return args[1] + " enabled", nil
	case len(args) == 2 && args[0] == "off":
		if err := s.Tools.Disable(args[1]); err != nil {
			return "", err
		}
		return args[1] + " disabled", nil
	default:
		return "", fmt.Errorf("usage: /tools [on|off <name>]")
	}
}
