package service

import "context"

// Completer is the language-model surface the chat pipeline depends on.
// Implementations return the raw assistant text for a single prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
	Enabled() bool
}
