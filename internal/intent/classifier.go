// internal/intent/classifier.go
package intent

import (
	"context"
	"errors"
	"fmt"
)

// Classifier turns a request into an intent record.
type Classifier interface {
	Classify(ctx context.Context, req Request) (Record, error)
}

// Strategy names the classifier that produced a record.
type Strategy string

const (
	StrategyRemote    Strategy = "remote"
	StrategyHeuristic Strategy = "heuristic"
	// StrategyProvided marks a record supplied by the caller, e.g. a job
	// variable set by an earlier classify-intent task.
	StrategyProvided Strategy = "provided"
)

var (
	ErrEmptyResponse   = errors.New("classification backend returned an empty response")
	ErrSchemaViolation = errors.New("classification response violates the intent schema")
)

// Stage is where in the remote round trip a classification failed.
type Stage string

const (
	StageBackend  Stage = "backend"
	StageSchema   Stage = "schema"
	StageDecode   Stage = "decode"
	StageValidate Stage = "validate"
)

type ClassificationError struct {
	Stage Stage
	Cause error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("intent classification failed at %s: %v", e.Stage, e.Cause)
}

func (e *ClassificationError) Unwrap() error {
	return e.Cause
}

// FailureReason buckets an error for metrics labels.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrInconsistentIntent):
		return "inconsistent"
	case errors.Is(err, ErrSchemaViolation):
		return "schema"
	case errors.Is(err, ErrEmptyResponse):
		return "empty"
	}

	var ce *ClassificationError
	if errors.As(err, &ce) {
		return string(ce.Stage)
	}
	return "error"
}
