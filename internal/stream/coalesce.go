package stream

import "strings"

// Coalescer re-batches arbitrarily small text fragments into chunks of at
// least min bytes. It performs no transformation: order and total content are
// preserved exactly. The final chunk may be smaller; Flush returns it when the
// input ends.
type Coalescer struct {
	min   int
	parts []string
	size  int
}

func NewCoalescer(min int) *Coalescer {
	if min < 0 {
		min = 0
	}
	return &Coalescer{min: min}
}

// Push adds a fragment and reports the next chunk once the buffered size
// reaches the threshold.
func (c *Coalescer) Push(fragment string) (string, bool) {
	if fragment == "" {
		return "", false
	}
	c.parts = append(c.parts, fragment)
	c.size += len(fragment)
	if c.size < c.min {
		return "", false
	}
	return c.take(), true
}

// Flush drains whatever is buffered, regardless of size. No chunk is emitted
// on an empty buffer.
func (c *Coalescer) Flush() (string, bool) {
	if c.size == 0 {
		return "", false
	}
	return c.take(), true
}

func (c *Coalescer) take() string {
	var out string
	if len(c.parts) == 1 {
		out = c.parts[0]
	} else {
		out = strings.Join(c.parts, "")
	}
	c.parts = c.parts[:0]
	c.size = 0
	return out
}
