package llm

import "github.com/google/generative-ai-go/genai"

// IntentResponseSchema mirrors the intent record so Gemini emits it directly.
func IntentResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"is_holding": {
				Type:        genai.TypeBoolean,
				Description: "Holding or subsidiary structure, or participation exemption relief",
			},
			"must_be_bv": {
				Type:        genai.TypeBoolean,
				Description: "Explicit Dutch B.V. designation, or a holding",
			},
			"intent": {
				Type: genai.TypeString,
				Enum: []string{"SETUP", "ADVISORY", "COMPLIANCE"},
			},
			"entity_type": {
				Type:     genai.TypeString,
				Enum:     []string{"BV", "BRANCH", "HOLDING"},
				Nullable: true,
			},
			"urgency": {
				Type: genai.TypeString,
				Enum: []string{"HIGH", "MEDIUM", "LOW"},
			},
			"industry_context": {
				Type:     genai.TypeString,
				Enum:     []string{"TECH", "FINANCIAL", "GENERAL"},
				Nullable: true,
			},
		},
		Required: []string{"is_holding", "must_be_bv", "intent", "urgency"},
	}
}
