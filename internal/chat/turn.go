package chat

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/Refefer/quick-query/internal/llm"
	"github.com/Refefer/quick-query/internal/stream"
	"github.com/Refefer/quick-query/internal/tools"
)

// maxToolRounds caps how many times a single turn may bounce between the
// model and its tools before giving up.
const maxToolRounds = 16

// RunTurn streams one assistant turn, resolving tool calls until the model
// produces a plain answer. It returns the messages generated during the turn
// (tool requests, tool results, final assistant message) and the final text.
// The history slice is never mutated.
func RunTurn(ctx context.Context, client llm.Client, reg *tools.Registry, d *stream.Dispatcher, sink stream.Sink, history []llm.Message) ([]llm.Message, string, error) {
	msgs := make([]llm.Message, len(history), len(history)+2)
	copy(msgs, history)

	var produced []llm.Message
	for round := 0; ; round++ {
		req := llm.Request{Messages: msgs}
		if reg != nil {
			req.Tools = reg.Specs()
		}

		rs, err := client.Stream(ctx, req)
		if err != nil {
			return nil, "", err
		}
		segs, err := d.Run(rs, sink)
		_ = rs.Close()
		if err != nil {
			return nil, "", err
		}

		call, ok := stream.FirstToolCall(segs)
		if !ok {
			final, _ := stream.FinalText(segs)
			produced = append(produced, llm.AssistantMessage(final))
			return produced, final, nil
		}
		if round >= maxToolRounds {
			return nil, "", fmt.Errorf("chat: model requested more than %d consecutive tool calls", maxToolRounds)
		}
		if reg == nil {
			return nil, "", fmt.Errorf("chat: model requested tool %q but no tools are configured", call.Name)
		}

		log.Debug().Str("tool", call.Name).Int("round", round).Msg("resolving tool call")
		request := llm.ToolRequestMessage(call)
		result := reg.Invoke(ctx, call)
		produced = append(produced, request, result)
		msgs = append(msgs, request, result)
	}
}

// Re2Prompt applies "read the question again" rewriting: the message is
// repeated after an explicit re-read instruction, which measurably helps
// smaller models on multi-constraint questions.
func Re2Prompt(message string) string {
	return fmt.Sprintf("%s\nRead the question again:\n%s", message, message)
}
