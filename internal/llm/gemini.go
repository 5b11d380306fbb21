// internal/llm/gemini.go
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"market-entry-workers/internal/common/config"
)

// GeminiClient implements StructuredClient for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config config.GenAIConfig
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, cfg config.GenAIConfig) (*GeminiClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		config: cfg,
	}, nil
}

func (c *GeminiClient) model() *genai.GenerativeModel {
	name := c.config.Model
	if name == "" {
		name = defaultModel
	}

	model := c.client.GenerativeModel(name)
	model.SetTemperature(temperature(c.config))
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = IntentResponseSchema()
	return model
}

// GenerateStructured sends the prompt with the system instruction attached
// and returns the JSON text of the first candidate.
func (c *GeminiClient) GenerateStructured(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if timeout := requestTimeout(c.config); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	model := c.model()
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemInstruction)},
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text, err := extractTextFromResponse(resp)
	if err != nil {
		return "", err
	}

	return CleanJSONBlock(text), nil
}

// Close releases resources held by the client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
