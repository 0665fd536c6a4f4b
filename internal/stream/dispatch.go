package stream

import (
	"errors"
	"io"
)

// Sink receives rendered output while a turn streams. Reasoning text always
// arrives fragment by fragment; content arrives fragment by fragment unless
// the dispatcher was told the renderer needs whole blocks.
type Sink interface {
	Reasoning(text string)
	Content(text string)
	ToolCallStarted(name string)
}

// NopSink discards everything. Batch evaluation uses it: only the finalized
// segments matter there.
type NopSink struct{}

func (NopSink) Reasoning(string)       {}
func (NopSink) Content(string)         {}
func (NopSink) ToolCallStarted(string) {}

const kindNone Kind = -1

// Dispatcher drives one assistant turn: it pulls deltas, runs inline text
// through the coalescer and tag splitter, routes tool-call fragments to the
// accumulator, groups everything into maximal same-kind runs, and yields the
// finalized segments.
type Dispatcher struct {
	// ThinkTag names the reasoning tag pair; empty disables tag splitting.
	ThinkTag string

	// MinChunkSize is the coalescer threshold in bytes.
	MinChunkSize int

	// NeedsBuffering holds content runs until run end before handing them to
	// the sink, for renderers that format whole blocks.
	NeedsBuffering bool
}

// Run consumes the turn's delta stream to completion and returns the
// finalized segments in order. A transport error aborts the turn.
func (d *Dispatcher) Run(src DeltaSource, sink Sink) ([]Segment, error) {
	if sink == nil {
		sink = NopSink{}
	}

	co := NewCoalescer(d.MinChunkSize)
	sp := NewSplitter(d.ThinkTag)
	var acc Accumulator

	var (
		segs   []Segment
		cur    = kindNone
		prev   = kindNone
		run    []string
		runLen int
	)

	closeRun := func() {
		switch cur {
		case KindContent:
			text := join(run, runLen)
			if d.NeedsBuffering {
				sink.Content(text)
			}
			segs = append(segs, Segment{Kind: KindContent, Text: text})
		case KindReasoning:
			segs = append(segs, Segment{Kind: KindReasoning, Text: join(run, runLen)})
		case KindToolCall:
			call := acc.Finalize()
			if call != nil {
				sink.ToolCallStarted(call.Name)
				segs = append(segs, Segment{Kind: KindToolCall, Call: call})
			}
		}
		prev, cur = cur, kindNone
		run, runLen = run[:0], 0
	}

	feed := func(kind Kind, text string) {
		if text == "" {
			return
		}
		if cur != kindNone && cur != kind {
			closeRun()
		}
		if cur == kindNone {
			cur = kind
			if kind == KindContent && prev == KindReasoning {
				// Keep rendered output visually distinct from the
				// reasoning that precedes it.
				sink.Reasoning("\n\n")
			}
		}
		run = append(run, text)
		runLen += len(text)
		switch kind {
		case KindReasoning:
			sink.Reasoning(text)
		case KindContent:
			if !d.NeedsBuffering {
				sink.Content(text)
			}
		}
	}

	feedSpans := func(spans []Span) {
		for _, s := range spans {
			if s.InBlock {
				feed(KindReasoning, s.Text)
			} else {
				feed(KindContent, s.Text)
			}
		}
	}

	// flushText drains buffered inline text so a non-text delta cannot be
	// reordered ahead of content that arrived before it.
	flushText := func() {
		if chunk, ok := co.Flush(); ok {
			feedSpans(sp.Push(chunk))
		}
		feedSpans(sp.Flush())
	}

	for {
		dlt, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch {
		case dlt.Tool != nil:
			flushText()
			if cur != KindToolCall {
				if cur != kindNone {
					closeRun()
				}
				cur = KindToolCall
			}
			acc.Add(*dlt.Tool)
		case dlt.Reasoning != "":
			flushText()
			feed(KindReasoning, dlt.Reasoning)
		case dlt.Content != "":
			if chunk, ok := co.Push(dlt.Content); ok {
				feedSpans(sp.Push(chunk))
			}
		}
	}

	flushText()
	if cur != kindNone {
		closeRun()
	}
	return segs, nil
}

func join(parts []string, n int) string {
	if len(parts) == 1 {
		return parts[0]
	}
	buf := make([]byte, 0, n)
	for _, p := range parts {
		buf = append(buf, p...)
	}
	return string(buf)
}
