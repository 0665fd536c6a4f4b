package stream

import "strings"

// Span is a piece of text tagged with whether it lies inside a reasoning
// block. Marker text itself is part of the block it delimits.
type Span struct {
	InBlock bool
	Text    string
}

// Splitter scans a chunk stream for a literal start/end marker pair derived
// from a tag name (<tag> and </tag>) and labels every byte as inside or
// outside the block. Markers split across chunk boundaries are handled by
// withholding any buffer whose tail could still complete a marker.
//
// Concatenating the Text of every emitted span reproduces the input exactly.
type Splitter struct {
	start    string
	end      string
	prefixes []string
	buf      string
	inBlock  bool
}

// NewSplitter builds a splitter for the given tag name. An empty tag yields a
// passthrough splitter that labels everything as outside a block.
func NewSplitter(tag string) *Splitter {
	if tag == "" {
		return &Splitter{}
	}
	start := "<" + tag + ">"
	end := "</" + tag + ">"
	return &Splitter{
		start:    start,
		end:      end,
		prefixes: markerPrefixes(start, end),
	}
}

// markerPrefixes returns every proper, non-empty prefix of both markers,
// longest first so the guard check can stop at the first hit.
func markerPrefixes(markers ...string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range markers {
		for i := 1; i < len(m); i++ {
			p := m[:i]
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			out = append(out, p)
		}
	}
	// Longer prefixes first: a tail matching "</t" also matches "<", and the
	// guard only needs to know whether any prefix matches.
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if len(out[j]) > len(out[i]) {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out
}

// Push consumes one chunk and returns the spans that can be emitted without
// risking a marker split across the chunk boundary.
func (s *Splitter) Push(chunk string) []Span {
	if chunk == "" {
		return nil
	}
	if s.start == "" {
		return []Span{{InBlock: false, Text: chunk}}
	}

	s.buf += chunk
	var out []Span

	// A single chunk may contain several transitions; keep splitting at the
	// currently expected marker until none remains.
	for {
		marker := s.start
		if s.inBlock {
			marker = s.end
		}
		i := strings.Index(s.buf, marker)
		if i < 0 {
			break
		}
		if i > 0 {
			out = append(out, Span{InBlock: s.inBlock, Text: s.buf[:i]})
		}
		if !s.inBlock {
			// The start marker belongs to the block it opens.
			s.inBlock = true
			out = append(out, Span{InBlock: true, Text: marker})
		} else {
			out = append(out, Span{InBlock: true, Text: marker})
			s.inBlock = false
		}
		s.buf = s.buf[i+len(marker):]
	}

	if s.buf == "" {
		return out
	}
	if s.withhold() {
		return out
	}
	out = append(out, Span{InBlock: s.inBlock, Text: s.buf})
	s.buf = ""
	return out
}

// withhold reports whether the buffer tail matches a proper prefix of either
// marker, meaning the marker might complete on the next chunk.
func (s *Splitter) withhold() bool {
	for _, p := range s.prefixes {
		if strings.HasSuffix(s.buf, p) {
			return true
		}
	}
	return false
}

// Flush releases any withheld text at end of stream. An unterminated block
// degrades to plain text of its current mode; it is not an error.
func (s *Splitter) Flush() []Span {
	if s.buf == "" {
		return nil
	}
	sp := Span{InBlock: s.inBlock, Text: s.buf}
	s.buf = ""
	return []Span{sp}
}
