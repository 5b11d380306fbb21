// internal/intent/fallback.go
package intent

import (
	"context"
	"fmt"
	"time"

	"market-entry-workers/internal/common/errors"
	"market-entry-workers/internal/common/logger"
	"market-entry-workers/internal/common/metrics"
)

// Outcome is a classification together with how it was obtained.
type Outcome struct {
	Record         Record
	Strategy       Strategy
	FallbackReason string
	// PrimaryErr is the absorbed error of the primary strategy, if any.
	PrimaryErr error
}

// FallbackClassifier tries the primary classifier once and answers with the
// heuristic on any failure. It never returns an error.
type FallbackClassifier struct {
	primary  Classifier
	fallback *HeuristicClassifier
	timeout  time.Duration
	logger   logger.Logger
}

type FallbackOption func(*FallbackClassifier)

// WithPrimaryTimeout bounds the wait for the primary; zero leaves it to the
// caller's context.
func WithPrimaryTimeout(d time.Duration) FallbackOption {
	return func(f *FallbackClassifier) { f.timeout = d }
}

func WithLogger(l logger.Logger) FallbackOption {
	return func(f *FallbackClassifier) { f.logger = l }
}

// NewFallbackClassifier composes primary with the heuristic. A nil primary
// yields a heuristic-only classifier.
func NewFallbackClassifier(primary Classifier, opts ...FallbackOption) *FallbackClassifier {
	f := &FallbackClassifier{
		primary:  primary,
		fallback: NewHeuristicClassifier(),
		logger:   logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FallbackClassifier) Classify(ctx context.Context, req Request) (Record, error) {
	return f.Resolve(ctx, req).Record, nil
}

// Resolve classifies req and reports which strategy produced the record.
func (f *FallbackClassifier) Resolve(ctx context.Context, req Request) Outcome {
	start := time.Now()

	var out Outcome
	if f.primary == nil {
		out = Outcome{Record: f.fallback.Evaluate(req), Strategy: StrategyHeuristic}
	} else {
		rec, err := f.callPrimary(ctx, req)
		if err == nil {
			out = Outcome{Record: rec, Strategy: StrategyRemote}
		} else {
			out = Outcome{
				Record:         f.fallback.Evaluate(req),
				Strategy:       StrategyHeuristic,
				FallbackReason: FailureReason(err),
				PrimaryErr:     err,
			}
			metrics.IntentClassifierFallbacks.WithLabelValues(out.FallbackReason).Inc()
			stdErr := fallbackError(out.FallbackReason, err)
			f.logger.Warn("remote intent classification failed, using heuristic fallback", map[string]interface{}{
				"reason":        out.FallbackReason,
				"errorCode":     string(stdErr.Code),
				"errorCategory": errors.GetErrorCategory(stdErr.Code),
				"error":         err.Error(),
			})
		}
	}

	metrics.IntentClassifications.WithLabelValues(string(out.Strategy)).Inc()
	metrics.IntentClassificationDuration.WithLabelValues(string(out.Strategy)).Observe(time.Since(start).Seconds())

	fields := out.Record.Fields()
	fields["strategy"] = string(out.Strategy)
	f.logger.Info("intent classified", fields)

	return out
}

type primaryResult struct {
	rec Record
	err error
}

// callPrimary returns once the primary answers or ctx is done, whichever is
// first. A primary that ignores ctx is left to finish in the background.
func (f *FallbackClassifier) callPrimary(ctx context.Context, req Request) (Record, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	done := make(chan primaryResult, 1)
	go func() {
		var res primaryResult
		defer func() {
			if r := recover(); r != nil {
				res = primaryResult{err: &ClassificationError{Stage: StageBackend, Cause: fmt.Errorf("panic: %v", r)}}
			}
			done <- res
		}()
		res.rec, res.err = f.primary.Classify(ctx, req)
	}()

	select {
	case <-ctx.Done():
		return Record{}, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return Record{}, res.err
		}
		// Primary classifiers other than RemoteClassifier may skip validation.
		if err := res.rec.Validate(); err != nil {
			return Record{}, err
		}
		if err := ctx.Err(); err != nil {
			return Record{}, err
		}
		return res.rec, nil
	}
}

// fallbackError labels an absorbed primary failure with its error code.
func fallbackError(reason string, err error) *errors.StandardError {
	switch reason {
	case "timeout":
		return errors.NewIntentAPITimeoutError()
	case "schema", "decode", "validate", "inconsistent", "empty":
		return errors.NewIntentSchemaViolationError(err.Error())
	default:
		return errors.NewIntentClassificationFailedError(err)
	}
}
