package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanJSONBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "json code block",
			input:    "```json\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "generic code block",
			input:    "```\n{\"key\": \"value\"}\n```",
			expected: `{"key": "value"}`,
		},
		{
			name:     "plain JSON",
			input:    `  {"key": "value"}  `,
			expected: `{"key": "value"}`,
		},
		{
			name:     "preamble before JSON object",
			input:    "Here is the classification:\n{\"intent\": \"SETUP\"}",
			expected: `{"intent": "SETUP"}`,
		},
		{
			name:     "not json at all",
			input:    "sorry, I cannot help",
			expected: "sorry, I cannot help",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanJSONBlock(tt.input))
		})
	}
}

func TestExtractTextFromResponse(t *testing.T) {
	t.Run("joins text parts", func(t *testing.T) {
		resp := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{
				Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"a":`), genai.Text(`1}`)}},
			}},
		}
		text, err := extractTextFromResponse(resp)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, text)
	})

	t.Run("no candidates", func(t *testing.T) {
		_, err := extractTextFromResponse(&genai.GenerateContentResponse{})
		assert.Error(t, err)
	})

	t.Run("no content", func(t *testing.T) {
		_, err := extractTextFromResponse(&genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{}},
		})
		assert.Error(t, err)
	})
}

func TestIntentResponseSchema(t *testing.T) {
	schema := IntentResponseSchema()

	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"is_holding", "must_be_bv", "intent", "urgency"}, schema.Required)
	assert.True(t, schema.Properties["entity_type"].Nullable)
	assert.True(t, schema.Properties["industry_context"].Nullable)
	assert.False(t, schema.Properties["urgency"].Nullable)
	assert.Equal(t, []string{"HIGH", "MEDIUM", "LOW"}, schema.Properties["urgency"].Enum)
}
