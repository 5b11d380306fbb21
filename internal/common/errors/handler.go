// internal/common/errors/handler.go
package errors

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

// ErrorHandler reports a failed job back to Zeebe: retryable failures are
// failed with a retry budget, everything else is thrown as a BPMN error.
type ErrorHandler struct {
	logger Logger
}

// Resolution is the decision HandleJobError acts on.
type Resolution struct {
	Throw    bool
	Retries  int
	Standard *StandardError
	BPMN     *BPMNError
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// Resolve decides how a job failure is reported without talking to Zeebe.
func (h *ErrorHandler) Resolve(job entities.Job, err error) Resolution {
	stdErr := AsStandardError(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	retries := bpmnErr.Retries
	// job.Retries counts the current attempt; hand back at most what remains.
	if job.ActivatedJob != nil && int(job.Retries)-1 < retries {
		retries = int(job.Retries) - 1
	}
	if retries < 0 {
		retries = 0
	}

	return Resolution{
		Throw:    retries == 0,
		Retries:  retries,
		Standard: stdErr,
		BPMN:     bpmnErr,
	}
}

func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) Resolution {
	res := h.Resolve(job, err)
	h.logError(job, res)

	if res.Throw {
		h.throwBPMNError(ctx, client, job, res.BPMN)
	} else {
		h.failJobWithRetries(ctx, client, job, res.BPMN, res.Retries)
	}
	return res
}

func (h *ErrorHandler) failJobWithRetries(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError, retries int) {
	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage("[" + bpmnErr.Code + "] " + bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err == nil {
		_, err = withVars.Send(ctx)
	} else {
		_, err = cmd.Send(ctx)
	}
	if err != nil {
		h.logger.Error("Failed to send fail job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	withVars, err := cmd.VariablesFromMap(bpmnErr.ToErrorVariables())
	if err == nil {
		_, err = withVars.Send(ctx)
	} else {
		_, err = cmd.Send(ctx)
	}
	if err != nil {
		h.logger.Error("Failed to send throw error command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
	}
}

func (h *ErrorHandler) logError(job entities.Job, res Resolution) {
	fields := map[string]interface{}{
		"errorCode":     string(res.Standard.Code),
		"bpmnErrorCode": res.BPMN.Code,
		"message":       res.BPMN.Message,
		"details":       res.Standard.Details,
		"retryable":     res.Standard.Retryable,
		"retries":       res.Retries,
		"thrown":        res.Throw,
		"errorCategory": GetErrorCategory(res.Standard.Code),
	}
	if job.ActivatedJob != nil {
		fields["jobKey"] = job.Key
		fields["jobType"] = job.Type
		fields["workflowInstance"] = job.ProcessInstanceKey
	}
	h.logger.Error("Job failed", fields)
}
