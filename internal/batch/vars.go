package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// VarSource yields one variable set at a time. io.EOF ends the stream.
type VarSource interface {
	Next() (map[string]any, error)
}

type sliceVars struct {
	items []map[string]any
}

func SliceVars(items []map[string]any) VarSource {
	return &sliceVars{items: items}
}

func (s *sliceVars) Next() (map[string]any, error) {
	if len(s.items) == 0 {
		return nil, io.EOF
	}
	item := s.items[0]
	s.items = s.items[1:]
	return item, nil
}

// ParseInline accepts a JSON object (one variable set) or an array of
// objects, as passed on the command line.
func ParseInline(raw string) ([]map[string]any, error) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") {
		var items []map[string]any
		if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
			return nil, fmt.Errorf("batch: parse variables: %w", err)
		}
		return items, nil
	}
	var item map[string]any
	if err := json.Unmarshal([]byte(trimmed), &item); err != nil {
		return nil, fmt.Errorf("batch: parse variables: %w", err)
	}
	return []map[string]any{item}, nil
}

type jsonlVars struct {
	sc   *bufio.Scanner
	line int
}

// JSONLVars reads one JSON object per line, skipping blank lines. The stream
// is consumed lazily so arbitrarily large inputs stay cheap.
func JSONLVars(r io.Reader) VarSource {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &jsonlVars{sc: sc}
}

func (j *jsonlVars) Next() (map[string]any, error) {
	for j.sc.Scan() {
		j.line++
		if len(strings.TrimSpace(string(j.sc.Bytes()))) == 0 {
			continue
		}
		var item map[string]any
		if err := json.Unmarshal(j.sc.Bytes(), &item); err != nil {
			return nil, fmt.Errorf("batch: variables line %d: %w", j.line, err)
		}
		return item, nil
	}
	if err := j.sc.Err(); err != nil {
		return nil, fmt.Errorf("batch: read variables: %w", err)
	}
	return nil, io.EOF
}
