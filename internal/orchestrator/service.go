// internal/orchestrator/service.go
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"market-entry-workers/internal/common/logger"
	"market-entry-workers/internal/common/metrics"
	"market-entry-workers/internal/common/observability"
	"market-entry-workers/internal/intent"
	"market-entry-workers/internal/planner"
)

const defaultClassificationTimeout = 10 * time.Second

// Result is one planned request.
type Result struct {
	RequestID      string                 `json:"requestId"`
	Intent         intent.Record          `json:"intent"`
	Strategy       intent.Strategy        `json:"classifierStrategy"`
	FallbackReason string                 `json:"fallbackReason,omitempty"`
	Path           planner.Path           `json:"planPath"`
	Tasks          []planner.Task         `json:"tasks"`
	Sections       []planner.SectionGroup `json:"sections"`
}

// Service runs classification and planning as one synchronous chain.
type Service struct {
	classifier *intent.FallbackClassifier
	obs        *observability.Observability
	logger     logger.Logger
	timeout    time.Duration
}

type Option func(*Service)

// WithClassificationTimeout bounds the remote classification; zero disables
// the bound.
func WithClassificationTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

func WithObservability(obs *observability.Observability) Option {
	return func(s *Service) { s.obs = obs }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(classifier *intent.FallbackClassifier, opts ...Option) *Service {
	s := &Service{
		classifier: classifier,
		logger:     logger.NewNoOpLogger(),
		timeout:    defaultClassificationTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.classifier == nil {
		s.classifier = intent.NewFallbackClassifier(nil, intent.WithLogger(s.logger))
	}
	return s
}

// NewRequestID returns requestID or a fresh UUID when it is blank.
func NewRequestID(requestID string) string {
	if requestID != "" {
		return requestID
	}
	return uuid.NewString()
}

// Classify runs the classifier under the configured timeout. It never fails.
func (s *Service) Classify(ctx context.Context, requestID string, req intent.Request) intent.Outcome {
	ctx, span := s.obs.StartSpan(ctx, "intent.classify", attribute.String("request_id", requestID))
	defer span.End()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	out := s.classifier.Resolve(ctx, req)
	span.SetAttributes(
		attribute.String("strategy", string(out.Strategy)),
		attribute.String("fallback_reason", out.FallbackReason),
	)
	return out
}

// Plan classifies req, unless provided carries a valid record, and plans
// the research tasks.
func (s *Service) Plan(ctx context.Context, requestID string, req intent.Request, provided *intent.Record) Result {
	requestID = NewRequestID(requestID)

	ctx, span := s.obs.StartSpan(ctx, "orchestrator.plan", attribute.String("request_id", requestID))
	defer span.End()

	var out intent.Outcome
	if provided != nil && provided.Validate() == nil {
		out = intent.Outcome{Record: *provided, Strategy: intent.StrategyProvided}
	} else {
		if provided != nil {
			s.logger.Warn("provided intent is invalid, classifying again", map[string]interface{}{
				"requestId": requestID,
				"error":     provided.Validate().Error(),
			})
		}
		out = s.Classify(ctx, requestID, req)
	}

	result := s.plan(ctx, requestID, out, req)

	span.SetAttributes(
		attribute.String("plan_path", result.Path.String()),
		attribute.Int("task_count", len(result.Tasks)),
	)
	return result
}

func (s *Service) plan(ctx context.Context, requestID string, out intent.Outcome, req intent.Request) Result {
	_, span := s.obs.StartSpan(ctx, "planner.plan")
	defer span.End()

	tasks, path := planner.PlanWithPath(out.Record, req)

	metrics.ResearchPlans.WithLabelValues(path.String()).Inc()
	metrics.ResearchPlanTasks.Observe(float64(len(tasks)))
	s.obs.RecordPlanCreated(ctx, path.String(), string(out.Strategy))

	fields := out.Record.Fields()
	fields["requestId"] = requestID
	fields["strategy"] = string(out.Strategy)
	fields["plan_path"] = path.String()
	fields["task_count"] = len(tasks)
	s.logger.Info("research plan created", fields)

	return Result{
		RequestID:      requestID,
		Intent:         out.Record,
		Strategy:       out.Strategy,
		FallbackReason: out.FallbackReason,
		Path:           path,
		Tasks:          tasks,
		Sections:       planner.GroupBySection(tasks),
	}
}
