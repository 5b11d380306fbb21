// internal/llm/gateway.go
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"market-entry-workers/internal/common/config"
	httpclient "market-entry-workers/internal/common/http"
)

const (
	classifyIntentPath  = "/api/ai/classify-intent"
	defaultGatewayLimit = 30 * time.Second
)

// GatewayClient posts classification prompts to an internal GenAI service.
// It does not retry; the caller falls back instead.
type GatewayClient struct {
	http        *httpclient.Client
	endpoint    string
	apiKey      string
	temperature float32
}

type gatewayRequest struct {
	System      string  `json:"system"`
	Prompt      string  `json:"prompt"`
	Temperature float32 `json:"temperature"`
}

// GatewayStatusError reports a non-2xx answer from the gateway.
type GatewayStatusError struct {
	StatusCode int
	Body       string
}

func (e *GatewayStatusError) Error() string {
	return fmt.Sprintf("genai gateway returned %d: %s", e.StatusCode, e.Body)
}

func NewGatewayClient(cfg config.GenAIConfig) (*GatewayClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("genai gateway base_url is required")
	}

	timeout := requestTimeout(cfg)
	if timeout == 0 {
		timeout = defaultGatewayLimit
	}

	return &GatewayClient{
		http:        httpclient.NewClient(timeout),
		endpoint:    base + classifyIntentPath,
		apiKey:      cfg.APIKey,
		temperature: temperature(cfg),
	}, nil
}

func (c *GatewayClient) GenerateStructured(ctx context.Context, systemInstruction, prompt string) (string, error) {
	body, err := c.http.PostJSON(ctx, c.endpoint, c.apiKey, gatewayRequest{
		System:      systemInstruction,
		Prompt:      prompt,
		Temperature: c.temperature,
	})
	if err != nil {
		var statusErr *httpclient.StatusError
		if errors.As(err, &statusErr) {
			return "", &GatewayStatusError{StatusCode: statusErr.StatusCode, Body: statusErr.Body}
		}
		return "", fmt.Errorf("genai gateway request failed: %w", err)
	}

	return unwrapIntent(body), nil
}

func (c *GatewayClient) Close() error {
	return nil
}

// unwrapIntent returns the record from an {"intent": {...}} envelope, or the
// body itself when the gateway answered with the bare record.
func unwrapIntent(body []byte) string {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err == nil {
		if inner, ok := envelope["intent"]; ok {
			trimmed := bytes.TrimSpace(inner)
			if len(trimmed) > 0 && trimmed[0] == '{' {
				return string(trimmed)
			}
		}
	}
	return CleanJSONBlock(string(body))
}
