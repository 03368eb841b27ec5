package providers

import (
	"context"
	"errors"
)

// ErrCompletionUnauthorized is returned when the inference service rejects the credentials.
var ErrCompletionUnauthorized = errors.New("completion provider unauthorized")

// CompletionRequest is a single text-in/text-out inference call.
type CompletionRequest struct {
	Prompt      string
	MaxTokens   int
	Temperature float64
	TopP        float64
	// Model overrides the provider's default model when set.
	Model string
}

// CompletionProvider defines the language-model inference boundary.
type CompletionProvider interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
