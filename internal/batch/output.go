package batch

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

type record struct {
	Variables map[string]any `json:"variables"`
	Response  string         `json:"response,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// WriteResults writes one JSON line per result until the channel closes.
func WriteResults(w io.Writer, results <-chan Result) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for res := range results {
		rec := record{Variables: res.Variables, Response: res.Response}
		if res.Err != nil {
			rec.Error = res.Err.Error()
		}
		if err := enc.Encode(rec); err != nil {
			// Keep draining so evaluator workers are not stuck on a full
			// channel.
			for range results {
			}
			return fmt.Errorf("batch: write result: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("batch: write result: %w", err)
	}
	return nil
}
