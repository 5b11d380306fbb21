// internal/intent/remote.go
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Backend is a model endpoint that answers a system instruction plus a user
// prompt with JSON constrained to RecordSchema. Implementations must return
// promptly once ctx is done; FallbackClassifier stops waiting at its deadline
// but cannot interrupt a call that ignores ctx.
type Backend interface {
	GenerateStructured(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// RemoteClassifier asks a language model to classify the request summary.
// Every failure is returned as a *ClassificationError; it does not fall back
// on its own.
type RemoteClassifier struct {
	backend Backend
}

func NewRemoteClassifier(backend Backend) *RemoteClassifier {
	return &RemoteClassifier{backend: backend}
}

func (c *RemoteClassifier) Classify(ctx context.Context, req Request) (Record, error) {
	if c.backend == nil {
		return Record{}, &ClassificationError{Stage: StageBackend, Cause: fmt.Errorf("no classification backend configured")}
	}

	raw, err := c.backend.GenerateStructured(ctx, SystemInstruction, BuildSummary(req))
	if err != nil {
		return Record{}, &ClassificationError{Stage: StageBackend, Cause: err}
	}

	return ParseRecord(raw)
}

// ParseRecord validates a raw model response against RecordSchema, decodes
// it and checks the entity/flag consistency rule.
func ParseRecord(raw string) (Record, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Record{}, &ClassificationError{Stage: StageBackend, Cause: ErrEmptyResponse}
	}

	if res := recordSchema.ValidateJSON([]byte(raw)); !res.Valid {
		return Record{}, &ClassificationError{
			Stage: StageSchema,
			Cause: fmt.Errorf("%w: %s", ErrSchemaViolation, res.Error()),
		}
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, &ClassificationError{Stage: StageDecode, Cause: err}
	}

	if err := rec.Validate(); err != nil {
		return Record{}, &ClassificationError{Stage: StageValidate, Cause: err}
	}

	return rec, nil
}
