// internal/common/camunda/worker.go
package camunda

import (
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"market-entry-workers/internal/common/logger"
)

// WorkerOptions describes one job worker subscription.
type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
	Handler       worker.JobHandler
}

// OpenWorker subscribes handler to its task type and returns the running worker.
func OpenWorker(client zbc.Client, opts WorkerOptions, log logger.Logger) (worker.JobWorker, error) {
	if client == nil {
		return nil, fmt.Errorf("zeebe client is required to open worker %s", opts.TaskType)
	}
	if opts.Handler == nil {
		return nil, fmt.Errorf("handler is required for worker %s", opts.TaskType)
	}

	jobWorker := client.NewJobWorker().
		JobType(opts.TaskType).
		Handler(opts.Handler).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Name(fmt.Sprintf("%s-worker", opts.TaskType)).
		Open()

	log.Info("worker registered with Camunda", map[string]interface{}{
		"taskType":      opts.TaskType,
		"maxJobsActive": opts.MaxJobsActive,
		"timeout":       opts.Timeout.String(),
	})

	return jobWorker, nil
}
