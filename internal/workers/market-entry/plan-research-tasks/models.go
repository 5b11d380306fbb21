package planresearchtasks

import (
	"context"

	"market-entry-workers/internal/intent"
	"market-entry-workers/internal/orchestrator"
	"market-entry-workers/internal/planner"
)

type Input struct {
	RequestID string         `json:"requestId,omitempty" validate:"max=128"`
	Request   intent.Request `json:"request"`
	// Intent is set when an earlier classify-intent task already ran.
	Intent *intent.Record `json:"intent,omitempty"`
}

type Output struct {
	RequestID          string                 `json:"requestId"`
	Intent             intent.Record          `json:"intent"`
	ClassifierStrategy intent.Strategy        `json:"classifierStrategy"`
	PlanPath           planner.Path           `json:"planPath"`
	Tasks              []planner.Task         `json:"tasks"`
	Sections           []planner.SectionGroup `json:"sections"`
	HandoffKey         string                 `json:"handoffKey,omitempty"`
}

type Planner interface {
	Plan(ctx context.Context, requestID string, req intent.Request, provided *intent.Record) orchestrator.Result
}

type Publisher interface {
	Publish(ctx context.Context, requestID string, rec intent.Record, tasks []planner.Task) (string, error)
}
