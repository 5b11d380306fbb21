// internal/bootstrap/classifier.go
// Package bootstrap wires the classification chain from configuration for
// both the worker manager and the CLI.
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/logger"
	"market-entry-workers/internal/common/observability"
	"market-entry-workers/internal/intent"
	"market-entry-workers/internal/llm"
	"market-entry-workers/internal/orchestrator"
)

// Options tune how the chain is assembled.
type Options struct {
	// ForceHeuristic skips the remote backend regardless of config.
	ForceHeuristic bool
	Observability  *observability.Observability
}

// NewClassifier builds the fallback classifier. A missing API key or the
// heuristic strategy yields a heuristic-only classifier. The returned close
// func releases the remote backend and is never nil.
func NewClassifier(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*intent.FallbackClassifier, func() error, error) {
	noop := func() error { return nil }

	if opts.ForceHeuristic || cfg.Classifier.Strategy == config.StrategyHeuristic {
		log.Info("remote intent classification disabled, using heuristic only", map[string]interface{}{
			"strategy": cfg.Classifier.Strategy,
		})
		return intent.NewFallbackClassifier(nil, intent.WithLogger(log)), noop, nil
	}

	client, err := llm.NewStructuredClient(ctx, cfg.GenAI)
	if errors.Is(err, llm.ErrMissingAPIKey) {
		log.Warn("genai api key not set, using heuristic intent classification only", map[string]interface{}{
			"provider": cfg.GenAI.Provider,
		})
		return intent.NewFallbackClassifier(nil, intent.WithLogger(log)), noop, nil
	}
	if err != nil {
		return nil, noop, fmt.Errorf("failed to create genai client: %w", err)
	}

	log.Info("remote intent classification enabled", map[string]interface{}{
		"provider": cfg.GenAI.Provider,
		"model":    cfg.GenAI.Model,
	})

	classifier := intent.NewFallbackClassifier(intent.NewRemoteClassifier(client), intent.WithLogger(log))
	return classifier, client.Close, nil
}

// NewService builds the orchestrator on top of NewClassifier.
func NewService(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*orchestrator.Service, func() error, error) {
	classifier, closeFn, err := NewClassifier(ctx, cfg, log, opts)
	if err != nil {
		return nil, closeFn, err
	}

	svc := orchestrator.NewService(classifier,
		orchestrator.WithClassificationTimeout(config.GetDuration(cfg.Classifier.Timeout)),
		orchestrator.WithObservability(opts.Observability),
		orchestrator.WithLogger(log),
	)
	return svc, closeFn, nil
}
