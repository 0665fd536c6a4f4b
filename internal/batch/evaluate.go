package batch

import (
	"context"
	"errors"
	"io"
	"runtime"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/Refefer/quick-query/internal/chat"
	"github.com/Refefer/quick-query/internal/llm"
	"github.com/Refefer/quick-query/internal/stream"
	"github.com/Refefer/quick-query/internal/tools"
)

// Result is the outcome for one variable set. A failed item carries its
// error here; it never aborts the run.
type Result struct {
	Index     int
	Variables map[string]any
	Response  string
	Err       error
}

// Evaluator runs a prompt template over variable sets with a fixed number of
// workers. At most concurrency items are in flight and at most twice that
// are read ahead from the source.
type Evaluator struct {
	Client       llm.Client
	Tools        *tools.Registry
	Dispatcher   *stream.Dispatcher
	Prompt       PromptSource
	SystemPrompt string
	Concurrency  int
}

type job struct {
	index int
	vars  map[string]any
}

// Run drains the source and sends one Result per item in completion order.
// The results channel is closed before Run returns. The returned error
// covers the source and context only; per-item failures land in Results.
func (e *Evaluator) Run(ctx context.Context, src VarSource, results chan<- Result) error {
	defer close(results)

	workers := e.Concurrency
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)

	// Workers pull from jobs as they finish, so the buffer plus the items
	// being processed bound the read-ahead window at twice the concurrency.
	jobs := make(chan job, workers)

	g.Go(func() error {
		defer close(jobs)
		for index := 0; ; index++ {
			vars, err := src.Next()
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return err
			}
			select {
			case jobs <- job{index: index, vars: vars}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for j := range jobs {
				res := e.evaluate(ctx, j)
				if res.Err != nil {
					log.Debug().Int("item", j.index).Err(res.Err).Msg("item failed")
				}
				select {
				case results <- res:
				case <-ctx.Done():
					return ctx.Err()
				}
			}
			return nil
		})
	}

	return g.Wait()
}

func (e *Evaluator) evaluate(ctx context.Context, j job) Result {
	res := Result{Index: j.index, Variables: j.vars}

	prompt, err := e.Prompt.Render(j.vars)
	if err != nil {
		res.Err = err
		return res
	}

	var history []llm.Message
	if e.SystemPrompt != "" {
		history = append(history, llm.SystemMessage(e.SystemPrompt))
	}
	history = append(history, llm.UserMessage(prompt))

	d := e.Dispatcher
	if d == nil {
		d = &stream.Dispatcher{}
	}
	_, final, err := chat.RunTurn(ctx, e.Client, e.Tools, d, stream.NopSink{}, history)
	if err != nil {
		res.Err = err
		return res
	}
	res.Response = final
	return res
}
