// Package models adapts hosted completion providers behind one interface.
package models

import "context"

// Turn is one prior conversation message. Role is "user" or "assistant".
type Turn struct {
	Role    string
	Content string
}

// CompletionRequest describes one synchronous completion call.
type CompletionRequest struct {
	System      string
	Turns       []Turn
	Temperature float64
	MaxTokens   int64
	// SchemaName/Schema request structured JSON output when both are set.
	SchemaName string
	Schema     map[string]any
}

// Completer generates a reply for a system prompt plus ordered turns.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
