package ai

import "context"

// GenerationRequest carries a single prompt for the text oracle.
type GenerationRequest struct {
	System string
	Prompt string
}

// GenerationResult is the oracle's free-text reply plus its self-reported
// confidence in the generation (0-100).
type GenerationResult struct {
	Text       string
	Confidence int
	Raw        map[string]interface{}
}

// Oracle describes a text/vision model capable of assessing craft projects.
// The engine depends only on this shape, never on a vendor SDK directly.
type Oracle interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}
