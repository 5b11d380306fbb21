// Package llm provides the remote backends used for intent classification.
// Both implementations answer a system instruction plus a user prompt with a
// JSON document constrained to the intent record schema.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"market-entry-workers/internal/common/config"
)

// StructuredClient generates schema-constrained JSON.
type StructuredClient interface {
	GenerateStructured(ctx context.Context, systemInstruction, prompt string) (string, error)
	// Close releases any resources held by the client
	Close() error
}

var ErrMissingAPIKey = errors.New("genai api key is required")

const (
	defaultModel       = "gemini-2.5-flash-lite"
	defaultTemperature = float32(0.1)
)

// NewStructuredClient builds the backend selected by cfg.Provider.
func NewStructuredClient(ctx context.Context, cfg config.GenAIConfig) (StructuredClient, error) {
	switch cfg.Provider {
	case config.ProviderGateway:
		return NewGatewayClient(cfg)
	case config.ProviderGemini, "":
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported genai provider %q", cfg.Provider)
	}
}

func requestTimeout(cfg config.GenAIConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 0
	}
	return time.Duration(cfg.Timeout) * time.Millisecond
}

func temperature(cfg config.GenAIConfig) float32 {
	if cfg.Temperature <= 0 {
		return defaultTemperature
	}
	return cfg.Temperature
}
