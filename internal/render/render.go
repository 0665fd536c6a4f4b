// Package render turns streamed turns into terminal output. Content and
// reasoning go to separate channels so chain-of-thought can be watched on
// another tty, redirected to a file, or dropped entirely.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
)

// Renderer is the output side of a streamed turn.
type Renderer interface {
	Reasoning(text string)
	Content(text string)
	ToolCallStarted(name string)

	// NeedsBuffering reports whether content must be delivered as whole
	// blocks instead of fragments.
	NeedsBuffering() bool
}

// Raw writes content fragments verbatim as they arrive.
type Raw struct {
	out io.Writer
	cot io.Writer
}

func NewRaw(out, cot io.Writer) *Raw {
	return &Raw{out: out, cot: cot}
}

func (r *Raw) Content(text string) {
	_, _ = io.WriteString(r.out, text)
}

func (r *Raw) Reasoning(text string) {
	_, _ = io.WriteString(r.cot, text)
}

func (r *Raw) ToolCallStarted(name string) {
	_, _ = fmt.Fprintf(r.cot, "\n\n* Tool Call: %s\n", name)
}

func (r *Raw) NeedsBuffering() bool { return false }

// Markdown renders whole content blocks through glamour. Reasoning stays
// plain: it streams token by token and markdown needs the full block anyway.
type Markdown struct {
	out io.Writer
	cot io.Writer
	tr  *glamour.TermRenderer
}

func NewMarkdown(out, cot io.Writer, opts ...glamour.TermRendererOption) (*Markdown, error) {
	if len(opts) == 0 {
		opts = []glamour.TermRendererOption{
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(100),
		}
	}
	tr, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return &Markdown{out: out, cot: cot, tr: tr}, nil
}

func (m *Markdown) Content(block string) {
	rendered, err := m.tr.Render(block)
	if err != nil {
		// Show the raw text rather than losing the response.
		rendered = block
	}
	_, _ = io.WriteString(m.out, rendered)
}

func (m *Markdown) Reasoning(text string) {
	_, _ = io.WriteString(m.cot, text)
}

func (m *Markdown) ToolCallStarted(name string) {
	_, _ = fmt.Fprintf(m.cot, "\n\n* Tool Call: %s\n", name)
}

func (m *Markdown) NeedsBuffering() bool { return true }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// OpenSideChannel resolves the chain-of-thought destination. "1" and "2"
// alias stdout and stderr; anything else is opened as a file path, which
// covers the /dev/tty default.
func OpenSideChannel(spec string) (io.WriteCloser, error) {
	switch spec {
	case "1":
		return nopWriteCloser{os.Stdout}, nil
	case "2":
		return nopWriteCloser{os.Stderr}, nil
	default:
		f, err := os.OpenFile(spec, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("render: open reasoning channel: %w", err)
		}
		return f, nil
	}
}

// Discard silences the reasoning channel when no destination is usable.
func Discard() io.WriteCloser { return nopWriteCloser{io.Discard} }
