package batch

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Refefer/quick-query/internal/llm"
	"github.com/Refefer/quick-query/internal/stream"
)

// echoClient answers every request with "echo: <last user message>" and
// tracks how many requests are in flight at once.
type echoClient struct {
	inFlight atomic.Int64
	peak     atomic.Int64
	delay    time.Duration
}

type echoStream struct {
	deltas []stream.Delta
}

func (s *echoStream) Next() (stream.Delta, error) {
	if len(s.deltas) == 0 {
		return stream.Delta{}, io.EOF
	}
	d := s.deltas[0]
	s.deltas = s.deltas[1:]
	return d, nil
}

func (s *echoStream) Close() error { return nil }

func (c *echoClient) Stream(ctx context.Context, req llm.Request) (llm.ResponseStream, error) {
	cur := c.inFlight.Add(1)
	for {
		peak := c.peak.Load()
		if cur <= peak || c.peak.CompareAndSwap(peak, cur) {
			break
		}
	}
	defer c.inFlight.Add(-1)

	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	last := req.Messages[len(req.Messages)-1]
	return &echoStream{deltas: []stream.Delta{{Content: "echo: " + last.Content}}}, nil
}

func (c *echoClient) ModelID(context.Context) (string, error) { return "echo", nil }

func collect(t *testing.T, e *Evaluator, src VarSource) []Result {
	t.Helper()
	results := make(chan Result, 1024)
	err := e.Run(context.Background(), src, results)
	require.NoError(t, err)
	var out []Result
	for res := range results {
		out = append(out, res)
	}
	return out
}

func itemVars(n int) []map[string]any {
	items := make([]map[string]any, n)
	for i := range items {
		items[i] = map[string]any{"word": fmt.Sprintf("w%d", i)}
	}
	return items
}

func TestEvaluator_AllItemsExactlyOnce(t *testing.T) {
	client := &echoClient{delay: time.Millisecond}
	e := &Evaluator{
		Client:      client,
		Prompt:      FromField("word"),
		Concurrency: 3,
	}

	out := collect(t, e, SliceVars(itemVars(20)))
	require.Len(t, out, 20)

	seen := make(map[int]bool)
	for _, res := range out {
		require.NoError(t, res.Err)
		assert.False(t, seen[res.Index], "index %d delivered twice", res.Index)
		seen[res.Index] = true
		assert.Equal(t, "echo: "+res.Variables["word"].(string), res.Response)
	}
}

func TestEvaluator_BoundsInFlightRequests(t *testing.T) {
	client := &echoClient{delay: 5 * time.Millisecond}
	e := &Evaluator{
		Client:      client,
		Prompt:      FromField("word"),
		Concurrency: 2,
	}

	out := collect(t, e, SliceVars(itemVars(12)))
	require.Len(t, out, 12)
	assert.LessOrEqual(t, client.peak.Load(), int64(2))
}

func TestEvaluator_FailedItemDoesNotAbortRun(t *testing.T) {
	client := &echoClient{}
	e := &Evaluator{
		Client:      client,
		Prompt:      FromField("word"),
		Concurrency: 2,
	}

	items := itemVars(4)
	items[1] = map[string]any{"other": "no prompt field"}
	out := collect(t, e, SliceVars(items))
	require.Len(t, out, 4)

	var failed, ok int
	for _, res := range out {
		if res.Err != nil {
			failed++
			assert.Equal(t, "no prompt field", res.Variables["other"])
		} else {
			ok++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 3, ok)
}

func TestEvaluator_SystemPromptIncluded(t *testing.T) {
	var sawSystem atomic.Bool
	client := &checkingClient{check: func(req llm.Request) {
		if len(req.Messages) > 0 && req.Messages[0].Role == "system" {
			sawSystem.Store(true)
		}
	}}
	e := &Evaluator{
		Client:       client,
		Prompt:       FromField("word"),
		SystemPrompt: "answer tersely",
		Concurrency:  1,
	}

	out := collect(t, e, SliceVars(itemVars(1)))
	require.Len(t, out, 1)
	assert.True(t, sawSystem.Load())
}

type checkingClient struct {
	check func(llm.Request)
}

func (c *checkingClient) Stream(_ context.Context, req llm.Request) (llm.ResponseStream, error) {
	c.check(req)
	return &echoStream{deltas: []stream.Delta{{Content: "ok"}}}, nil
}

func (c *checkingClient) ModelID(context.Context) (string, error) { return "checking", nil }

func TestEvaluator_SourceErrorAbortsRun(t *testing.T) {
	e := &Evaluator{
		Client:      &echoClient{},
		Prompt:      FromField("word"),
		Concurrency: 2,
	}

	bad := JSONLVars(strings.NewReader("{\"word\":\"a\"}\nnot json\n"))
	results := make(chan Result, 16)
	err := e.Run(context.Background(), bad, results)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
