package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion means the provider answered without any usable text.
var ErrEmptyCompletion = errors.New("model returned empty response")

// Provider generates text from a prompt. Implementations are network-bound
// and honor the context for cancellation and timeouts.
type Provider interface {
	Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// ClampTemperature keeps sampling temperature inside the accepted [0, 1] range.
func ClampTemperature(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
