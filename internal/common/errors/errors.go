// internal/common/errors/errors.go
// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidRequest      ErrorCode = "INVALID_REQUEST"
	ErrCodeInputParsingFailed  ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeInputSchemaMismatch ErrorCode = "INPUT_SCHEMA_MISMATCH"

	// Classification codes label classifier fallbacks in logs and metrics.
	// The composed classifier never lets them reach a job result.
	ErrCodeIntentClassificationFailed ErrorCode = "INTENT_CLASSIFICATION_FAILED"
	ErrCodeIntentAPITimeout           ErrorCode = "INTENT_API_TIMEOUT"
	ErrCodeIntentSchemaViolation      ErrorCode = "INTENT_SCHEMA_VIOLATION"

	ErrCodePlanHandoffFailed ErrorCode = "PLAN_HANDOFF_FAILED"

	ErrCodeExternalService  ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout          ErrorCode = "TIMEOUT_ERROR"
	ErrCodeResourceNotFound ErrorCode = "RESOURCE_NOT_FOUND"
	ErrCodeAuthentication   ErrorCode = "AUTHENTICATION_ERROR"
	ErrCodeInternal         ErrorCode = "INTERNAL_ERROR"
)

// StandardError is the internal error representation used by all workers.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Type
// ==========================

// BPMNError is what a worker reports back to Camunda.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidRequestError(details string) *StandardError {
	return newError(ErrCodeInvalidRequest, "Market entry request is invalid", details, false)
}

func NewInputParsingFailedError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Failed to parse job variables", err.Error(), false)
}

func NewInputSchemaMismatchError(details string) *StandardError {
	return newError(ErrCodeInputSchemaMismatch, "Job variables do not match the activity input schema", details, false)
}

func NewIntentClassificationFailedError(err error) *StandardError {
	return newError(ErrCodeIntentClassificationFailed, "Intent classification API error", err.Error(), true)
}

func NewIntentAPITimeoutError() *StandardError {
	return newError(ErrCodeIntentAPITimeout, "Intent classification API timeout", "API call exceeded timeout threshold", true)
}

func NewIntentSchemaViolationError(details string) *StandardError {
	return newError(ErrCodeIntentSchemaViolation, "Intent classification response violated the intent schema", details, false)
}

func NewPlanHandoffFailedError(key string, err error) *StandardError {
	return newError(ErrCodePlanHandoffFailed, "Failed to publish research plan", fmt.Sprintf("key: %s, error: %s", key, err.Error()), true)
}

func NewExternalServiceError(service string, err error) *StandardError {
	return newError(ErrCodeExternalService, fmt.Sprintf("External service '%s' error", service), err.Error(), true)
}

func NewTimeoutError(service string, err error) *StandardError {
	return newError(ErrCodeTimeout, fmt.Sprintf("Service '%s' timeout", service), err.Error(), true)
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return newError(ErrCodeResourceNotFound, fmt.Sprintf("Resource not found in %s", service), details, false)
}

func NewAuthenticationError(details string) *StandardError {
	return newError(ErrCodeAuthentication, "Authentication failed", details, false)
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal codes to the error codes caught by boundary
// events in the market-entry process models.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeInvalidRequest:             "INVALID_REQUEST",
	ErrCodeInputParsingFailed:         "INVALID_REQUEST",
	ErrCodeInputSchemaMismatch:        "INVALID_REQUEST",
	ErrCodeIntentClassificationFailed: "INTENT_CLASSIFICATION_FAILED",
	ErrCodeIntentAPITimeout:           "INTENT_API_TIMEOUT",
	ErrCodeIntentSchemaViolation:      "INTENT_SCHEMA_VIOLATION",
	ErrCodePlanHandoffFailed:          "PLAN_HANDOFF_FAILED",
}

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodePlanHandoffFailed,
		ErrCodeExternalService,
		ErrCodeIntentClassificationFailed:
		return 3

	case ErrCodeTimeout,
		ErrCodeIntentAPITimeout:
		return 2

	default:
		return 0
	}
}

// AsStandardError unwraps err looking for a StandardError. Anything else
// becomes a non-retryable INTERNAL_ERROR.
func AsStandardError(err error) *StandardError {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr
	}
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory groups codes for dashboards and log queries.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.HasPrefix(codeStr, "INTENT"):
		return "AI"
	case strings.Contains(codeStr, "HANDOFF"):
		return "HANDOFF"
	case strings.Contains(codeStr, "INVALID") || strings.HasPrefix(codeStr, "INPUT"):
		return "VALIDATION"
	case strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "EXTERNAL"):
		return "INTEGRATION"
	default:
		return "OTHER"
	}
}
