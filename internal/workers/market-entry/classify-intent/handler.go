package classifyintent

import (
	"context"
	"fmt"
	"time"

	"market-entry-workers/internal/common/camunda"
	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/errors"
	"market-entry-workers/internal/common/logger"
	"market-entry-workers/internal/common/metrics"
	"market-entry-workers/internal/common/observability"
	"market-entry-workers/internal/common/validation"
	"market-entry-workers/internal/orchestrator"
	"market-entry-workers/pkg/registry"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "classify-intent"

type Handler struct {
	config       *Config
	logger       logger.Logger
	camunda      *camunda.Client
	classifier   Classifier
	obs          *observability.Observability
	inputSchema  *validation.Schema
	errorHandler *errors.ErrorHandler
	jobWorker    worker.JobWorker
}

type HandlerOptions struct {
	AppConfig     *config.Config
	Camunda       *camunda.Client
	CustomConfig  *Config
	Logger        logger.Logger
	Classifier    Classifier
	Observability *observability.Observability
}

func NewHandler(opts HandlerOptions) (*Handler, error) {
	workerConfig := createConfigFromAppConfig(opts.AppConfig, opts.CustomConfig)

	if err := workerConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if opts.Classifier == nil {
		return nil, fmt.Errorf("classifier is required for %s", TaskType)
	}

	var loggerInstance logger.Logger
	if opts.Logger != nil {
		loggerInstance = opts.Logger
	} else {
		loggerInstance = logger.NewStructured("info", "json")
	}

	handler := &Handler{
		config:       workerConfig,
		logger:       loggerInstance.With(map[string]interface{}{"worker": TaskType}),
		camunda:      opts.Camunda,
		classifier:   opts.Classifier,
		obs:          opts.Observability,
		errorHandler: errors.NewErrorHandler(loggerInstance),
	}

	if workerConfig.RegistryPath != "" {
		schema, err := registry.InputValidator(workerConfig.RegistryPath, TaskType)
		if err != nil {
			return nil, fmt.Errorf("failed to load input schema for %s: %w", TaskType, err)
		}
		handler.inputSchema = schema
	}

	return handler, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	startTime := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(TaskType).Dec()

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing classify intent request", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	variables, err := h.process(ctx, job)
	if err != nil {
		stdErr := errors.AsStandardError(err)
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(stdErr.Code)).Inc()
		h.obs.RecordJobProcessed(ctx, TaskType, "failed")
		h.errorHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(ctx, client, job, variables)
	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	metrics.WorkerJobDuration.WithLabelValues(TaskType).Observe(time.Since(startTime).Seconds())
	h.obs.RecordJobProcessed(ctx, TaskType, "completed")
	h.obs.RecordJobDuration(ctx, TaskType, time.Since(startTime), "completed")
}

// process turns a job into its completion variables.
func (h *Handler) process(ctx context.Context, job entities.Job) (map[string]interface{}, error) {
	input, err := h.parseInput(job)
	if err != nil {
		return nil, err
	}

	output, err := h.Execute(ctx, input)
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"requestId":          output.RequestID,
		"intent":             output.Intent,
		"classifierStrategy": string(output.ClassifierStrategy),
	}, nil
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	if h.inputSchema != nil {
		if result := h.inputSchema.Validate(variables); !result.Valid {
			return nil, errors.NewInputSchemaMismatchError(
				fmt.Sprintf("Validation errors: %v", result.GetErrorMessages()))
		}
	}

	var input Input
	if err := job.GetVariablesAs(&input); err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	if result := validation.ValidateStruct(&input); !result.Valid {
		return nil, errors.NewInvalidRequestError(result.Error())
	}

	return &input, nil
}

// Execute classifies the request. Classification itself never fails.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	requestID := orchestrator.NewRequestID(input.RequestID)
	outcome := h.classifier.Classify(ctx, requestID, input.Request)

	return &Output{
		RequestID:          requestID,
		Intent:             outcome.Record,
		ClassifierStrategy: outcome.Strategy,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, variables map[string]interface{}) {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromMap(variables)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return
	}

	h.logger.Info("Successfully completed classify intent", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"requestId":          variables["requestId"],
		"classifierStrategy": variables["classifierStrategy"],
	})
}

func (h *Handler) Register() error {
	if !h.config.Enabled {
		h.logger.Info("Worker is disabled, skipping registration", nil)
		return nil
	}
	if h.camunda == nil {
		return fmt.Errorf("camunda client is required to register %s", TaskType)
	}

	jobWorker, err := camunda.OpenWorker(h.camunda.GetClient(), camunda.WorkerOptions{
		TaskType:      TaskType,
		MaxJobsActive: h.config.MaxJobsActive,
		Timeout:       h.config.Timeout,
		Handler:       h.Handle,
	}, h.logger)
	if err != nil {
		return err
	}

	h.jobWorker = jobWorker
	return nil
}

func (h *Handler) Close() {
	if h.jobWorker != nil {
		h.logger.Info("Shutting down worker gracefully", nil)
		h.jobWorker.Close()
		h.jobWorker = nil
	}
}

func (h *Handler) HealthCheck(ctx context.Context) error {
	if h.camunda == nil {
		return fmt.Errorf("camunda client not configured")
	}
	if err := h.camunda.HealthCheck(ctx); err != nil {
		return fmt.Errorf("camunda health check failed: %w", err)
	}
	return nil
}

func (h *Handler) GetTaskType() string {
	return TaskType
}

func (h *Handler) IsEnabled() bool {
	return h.config.Enabled
}

func (h *Handler) GetConfig() *Config {
	return h.config
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()

	if appConfig != nil {
		if workerCfg, exists := appConfig.Workers[TaskType]; exists {
			cfg.Enabled = workerCfg.Enabled
			if workerCfg.MaxJobsActive > 0 {
				cfg.MaxJobsActive = workerCfg.MaxJobsActive
			}
			if workerCfg.Timeout > 0 {
				cfg.Timeout = time.Duration(workerCfg.Timeout) * time.Millisecond
			}
		}
		cfg.RegistryPath = appConfig.RegistryPath
	}

	return cfg
}
