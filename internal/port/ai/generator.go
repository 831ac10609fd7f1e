// Package ai defines the text-generation port (interface).
package ai

import "context"

// Generator produces a reply for a fully built prompt. It is treated as
// unreliable: any error or empty output is substituted with a fallback
// sentence by the caller, never surfaced to the end user.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}
