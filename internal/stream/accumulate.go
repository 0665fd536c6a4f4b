package stream

// Accumulator merges streamed tool-call fragments into one descriptor.
// ID and Name are set once (the first non-empty value wins); argument text is
// concatenated in arrival order. One accumulator handles at most one call per
// assistant turn.
type Accumulator struct {
	call *ToolCall
}

// Add folds one fragment into the descriptor under construction.
func (a *Accumulator) Add(d ToolCallDelta) {
	if a.call == nil {
		a.call = &ToolCall{}
	}
	if a.call.ID == "" {
		a.call.ID = d.ID
	}
	if a.call.Name == "" {
		a.call.Name = d.Name
	}
	a.call.Arguments += d.Arguments
}

// Active reports whether any fragment has been seen.
func (a *Accumulator) Active() bool {
	return a.call != nil
}

// Finalize returns the completed descriptor and resets the accumulator.
// It returns nil when no fragment was ever added.
func (a *Accumulator) Finalize() *ToolCall {
	call := a.call
	a.call = nil
	return call
}
