package ai

import "context"

// Client is the analysis backend: it accepts a rendered prompt and
// returns the model's raw text reply.
type Client interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}
