package classifyintent

import (
	"context"

	"market-entry-workers/internal/intent"
)

type Input struct {
	RequestID string         `json:"requestId,omitempty" validate:"max=128"`
	Request   intent.Request `json:"request"`
}

type Output struct {
	RequestID          string          `json:"requestId"`
	Intent             intent.Record   `json:"intent"`
	ClassifierStrategy intent.Strategy `json:"classifierStrategy"`
}

// Classifier is the slice of the orchestrator this worker needs.
type Classifier interface {
	Classify(ctx context.Context, requestID string, req intent.Request) intent.Outcome
}
