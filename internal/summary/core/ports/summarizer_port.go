package ports

import (
	"context"
	"errors"
)

// ErrProviderLimit marks a quota or rate-limit response from the external
// provider, distinguishable from generic call failures.
var ErrProviderLimit = errors.New("summarization provider limit reached")

// SummarizeRequest is one call to the external summarization capability.
// Messages are transcript lines; the adapter decides how to lay them out in
// the actual prompt.
type SummarizeRequest struct {
	Messages     []string
	SystemPrompt string
	UserPrompt   string
	LengthNote   string
}

// SummarizeOptions are forwarded to the provider as-is.
type SummarizeOptions struct {
	MaxTokens        int
	Temperature      float64
	TopP             float64
	FrequencyPenalty float64
	Seed             int
}

type SummarizerPort interface {
	Summarize(ctx context.Context, req SummarizeRequest, opts SummarizeOptions) (string, error)
}
