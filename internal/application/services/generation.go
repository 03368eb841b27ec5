package services

import "github.com/zatekoja/medibot/internal/domain/providers"

// GenerationSettings are the completion parameters used by one stage.
type GenerationSettings struct {
	Model       string
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// DefaultClassifierSettings ask for a single deterministic token.
var DefaultClassifierSettings = GenerationSettings{MaxTokens: 20, Temperature: 0.0, TopP: 1.0}

// DefaultKnowledgeSettings are used for doctor guidance lookups.
var DefaultKnowledgeSettings = GenerationSettings{MaxTokens: 500, Temperature: 0.2, TopP: 0.9}

// DefaultSynthesizerSettings keep final answers low-variance.
var DefaultSynthesizerSettings = GenerationSettings{MaxTokens: 500, Temperature: 0.2, TopP: 0.9}

// WithModel returns a copy of g using model, or g unchanged when model is empty.
func (g GenerationSettings) WithModel(model string) GenerationSettings {
	if model != "" {
		g.Model = model
	}
	return g
}

func (g GenerationSettings) request(prompt string) providers.CompletionRequest {
	return providers.CompletionRequest{
		Prompt:      prompt,
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
		TopP:        g.TopP,
		Model:       g.Model,
	}
}
