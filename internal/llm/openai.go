package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/Refefer/quick-query/internal/stream"
)

type openAIClient struct {
	http *http.Client
	cfg  Config
}

// NewClient builds a streaming client for an OpenAI-compatible endpoint.
func NewClient(cfg Config) (Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &openAIClient{
		http: &http.Client{Timeout: timeout},
		cfg:  cfg,
	}, nil
}

type chatRequest struct {
	Model      string     `json:"model"`
	Messages   []Message  `json:"messages"`
	Stream     bool       `json:"stream"`
	Tools      []ToolSpec `json:"tools,omitempty"`
	ToolChoice string     `json:"tool_choice,omitempty"`
}

type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content          string          `json:"content,omitempty"`
			ReasoningContent string          `json:"reasoning_content,omitempty"`
			ToolCalls        []toolCallDelta `json:"tool_calls,omitempty"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type toolCallDelta struct {
	Index    int    `json:"index,omitempty"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    any    `json:"code"`
}

func (c *openAIClient) Stream(ctx context.Context, req Request) (ResponseStream, error) {
	payload := chatRequest{
		Model:    c.cfg.Model,
		Messages: req.Messages,
		Stream:   true,
		Tools:    req.Tools,
	}
	if len(req.Tools) > 0 {
		payload.ToolChoice = "auto"
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("llm: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.chatURL(), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	log.Debug().Str("model", c.cfg.Model).Int("messages", len(req.Messages)).
		Int("tools", len(req.Tools)).Msg("chat completion request")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
		_ = resp.Body.Close()
		return nil, fmt.Errorf("llm: http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	return &sseStream{
		body: resp.Body,
		br:   bufio.NewReaderSize(resp.Body, 64*1024),
	}, nil
}

// sseStream converts an SSE chat-completion body into deltas. Events may be
// single-line or split across several data lines; both are collected until
// the blank separator line before decoding.
type sseStream struct {
	body      io.ReadCloser
	br        *bufio.Reader
	dataLines []string
	pending   []stream.Delta
	done      bool
}

func (s *sseStream) Next() (stream.Delta, error) {
	for {
		if len(s.pending) > 0 {
			d := s.pending[0]
			s.pending = s.pending[1:]
			return d, nil
		}
		if s.done {
			return stream.Delta{}, io.EOF
		}

		line, err := s.br.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// Flush a trailing event that was never terminated by a
				// blank line.
				if ferr := s.flushEvent(); ferr != nil {
					return stream.Delta{}, ferr
				}
				s.done = true
				continue
			}
			return stream.Delta{}, err
		}
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			if ferr := s.flushEvent(); ferr != nil {
				return stream.Delta{}, ferr
			}
			continue
		}
		if strings.HasPrefix(line, "data:") {
			s.dataLines = append(s.dataLines, strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
		// Other SSE fields (event:, id:, retry:) are ignored.
	}
}

func (s *sseStream) flushEvent() error {
	if len(s.dataLines) == 0 {
		return nil
	}
	data := strings.TrimSpace(strings.Join(s.dataLines, "\n"))
	s.dataLines = s.dataLines[:0]
	if data == "" {
		return nil
	}
	if data == "[DONE]" {
		s.done = true
		return nil
	}
	var chunk streamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		// Some providers interleave keepalive garbage; skip it.
		log.Debug().Err(err).Msg("skipping malformed stream frame")
		return nil
	}
	if chunk.Error != nil && strings.TrimSpace(chunk.Error.Message) != "" {
		return fmt.Errorf("llm: %s", chunk.Error.Message)
	}
	for _, choice := range chunk.Choices {
		if d := choice.Delta.ReasoningContent; d != "" {
			s.pending = append(s.pending, stream.Delta{Reasoning: d})
		}
		if d := choice.Delta.Content; d != "" {
			s.pending = append(s.pending, stream.Delta{Content: d})
		}
		for _, tc := range choice.Delta.ToolCalls {
			s.pending = append(s.pending, stream.Delta{Tool: &stream.ToolCallDelta{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			}})
		}
	}
	return nil
}

func (s *sseStream) Close() error {
	return s.body.Close()
}

type modelsResponse struct {
	Data []struct {
		ID string `json:"id"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

// ModelID fetches the first model the endpoint advertises, used when a
// profile leaves the model unset.
func (c *openAIClient) ModelID(ctx context.Context) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.modelsURL(), nil)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return "", fmt.Errorf("llm: models http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	var out modelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("llm: decode models: %w", err)
	}
	if out.Error != nil && out.Error.Message != "" {
		return "", fmt.Errorf("llm: %s", out.Error.Message)
	}
	if len(out.Data) == 0 {
		return "", fmt.Errorf("llm: endpoint advertises no models")
	}
	return out.Data[0].ID, nil
}
