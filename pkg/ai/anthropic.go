package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicOracle is a stub implementation that can be expanded once the SDK is available.
type AnthropicOracle struct{}

// NewAnthropicOracle constructs a new stub oracle.
func NewAnthropicOracle(cfg AnthropicConfig) (*AnthropicOracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicOracle{}, nil
}

// Generate is not yet implemented for Anthropic models.
func (a *AnthropicOracle) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	return GenerationResult{}, fmt.Errorf("anthropic oracle not implemented")
}
