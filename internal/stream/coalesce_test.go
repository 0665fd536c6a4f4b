package stream

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalescer_MinChunkSize(t *testing.T) {
	c := NewCoalescer(10)

	_, ok := c.Push("hello")
	assert.False(t, ok, "5 bytes buffered, below threshold")

	chunk, ok := c.Push("world!")
	require.True(t, ok)
	assert.Equal(t, "helloworld!", chunk)

	_, ok = c.Flush()
	assert.False(t, ok, "no chunk on an empty buffer")
}

func TestCoalescer_FinalChunkMayBeSmall(t *testing.T) {
	c := NewCoalescer(100)
	_, ok := c.Push("tail")
	require.False(t, ok)

	chunk, ok := c.Flush()
	require.True(t, ok)
	assert.Equal(t, "tail", chunk)
}

func TestCoalescer_PreservesContent(t *testing.T) {
	fragments := []string{"a", "bc", "", "def", "g", "hijklmno", "p"}

	for _, min := range []int{0, 1, 3, 4, 100} {
		c := NewCoalescer(min)
		var out strings.Builder
		for _, f := range fragments {
			if chunk, ok := c.Push(f); ok {
				assert.GreaterOrEqual(t, len(chunk), min)
				out.WriteString(chunk)
			}
		}
		if chunk, ok := c.Flush(); ok {
			out.WriteString(chunk)
		}
		assert.Equal(t, strings.Join(fragments, ""), out.String(), "min=%d", min)
	}
}

func TestCoalescer_ZeroThresholdEmitsEveryFragment(t *testing.T) {
	c := NewCoalescer(0)
	chunk, ok := c.Push("x")
	require.True(t, ok)
	assert.Equal(t, "x", chunk)

	_, ok = c.Push("")
	assert.False(t, ok, "empty fragments produce nothing")
}
