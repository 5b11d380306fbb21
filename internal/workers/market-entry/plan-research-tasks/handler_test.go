package planresearchtasks

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/database"
	"market-entry-workers/internal/common/errors"
	"market-entry-workers/internal/common/logger"
	"market-entry-workers/internal/handoff"
	"market-entry-workers/internal/intent"
	"market-entry-workers/internal/orchestrator"
	"market-entry-workers/internal/planner"
	"market-entry-workers/pkg/registry"
)

// ==========================
// Mock Implementations
// ==========================

type MockPlanner struct {
	mock.Mock
}

func (m *MockPlanner) Plan(ctx context.Context, requestID string, req intent.Request, provided *intent.Record) orchestrator.Result {
	args := m.Called(ctx, requestID, req, provided)
	return args.Get(0).(orchestrator.Result)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, requestID string, rec intent.Record, tasks []planner.Task) (string, error) {
	args := m.Called(ctx, requestID, rec, tasks)
	return args.String(0), args.Error(1)
}

// ==========================
// Mock Job Helper
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                      key,
		Type:                     TaskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "market-entry-process",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_PlanResearchTasks",
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Deadline:                 0,
		Variables:                string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}

// ==========================
// Test Helpers
// ==========================

func registryPath(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "..", "configs", "activity-registry.json")
}

var holdingRecord = intent.Record{
	IsHolding:  true,
	MustBeBV:   true,
	Intent:     intent.KindSetup,
	EntityType: intent.EntityBV,
	Urgency:    intent.UrgencyMedium,
}

func holdingResult(requestID string) orchestrator.Result {
	tasks, path := planner.PlanWithPath(holdingRecord, intent.Request{})
	return orchestrator.Result{
		RequestID: requestID,
		Intent:    holdingRecord,
		Strategy:  intent.StrategyProvided,
		Path:      path,
		Tasks:     tasks,
		Sections:  planner.GroupBySection(tasks),
	}
}

func newHandler(t *testing.T, cfg *Config, p Planner, pub Publisher) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: cfg,
		Logger:       logger.NewTestLogger(t),
		Planner:      p,
		Publisher:    pub,
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Configuration
// ==========================

func TestCreateConfigFromAppConfig(t *testing.T) {
	appConfig := &config.Config{
		Handoff: config.HandoffConfig{Enabled: true},
		Workers: map[string]config.WorkerConfig{
			TaskType: {Enabled: true, MaxJobsActive: 3, Timeout: 2500},
		},
	}

	cfg := createConfigFromAppConfig(appConfig, nil)
	assert.True(t, cfg.PublishPlan)
	assert.Equal(t, 3, cfg.MaxJobsActive)
	assert.Equal(t, 2500*time.Millisecond, cfg.Timeout)
}

func TestNewHandler_Validation(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig()})
	assert.ErrorContains(t, err, "planner is required")

	publishing := DefaultConfig()
	publishing.PublishPlan = true
	_, err = NewHandler(HandlerOptions{CustomConfig: publishing, Planner: new(MockPlanner)})
	assert.ErrorContains(t, err, "publisher is required")

	_, err = NewHandler(HandlerOptions{
		CustomConfig: &Config{MaxJobsActive: 1},
		Planner:      new(MockPlanner),
	})
	assert.Error(t, err)
}

// ==========================
// Job Processing
// ==========================

func TestHandler_Process(t *testing.T) {
	request := map[string]interface{}{
		"company_name":       "Acme Holding NV",
		"tax_considerations": []string{"participation exemption"},
	}

	tests := []struct {
		name      string
		publish   bool
		variables map[string]interface{}
		setup     func(p *MockPlanner, pub *MockPublisher)
		wantCode  errors.ErrorCode
		check     func(t *testing.T, vars map[string]interface{})
	}{
		{
			name:      "provided intent is passed through",
			variables: map[string]interface{}{"requestId": "req-1", "request": request, "intent": holdingRecord},
			setup: func(p *MockPlanner, _ *MockPublisher) {
				p.On("Plan", mock.Anything, "req-1", mock.Anything, &holdingRecord).Return(holdingResult("req-1"))
			},
			check: func(t *testing.T, vars map[string]interface{}) {
				assert.Equal(t, "HOLDING", vars["planPath"])
				assert.Equal(t, "provided", vars["classifierStrategy"])
				assert.Len(t, vars["tasks"], len(holdingResult("").Tasks))
				assert.NotContains(t, vars, "handoffKey")
			},
		},
		{
			name:      "missing intent classifies",
			variables: map[string]interface{}{"requestId": "req-2", "request": request},
			setup: func(p *MockPlanner, _ *MockPublisher) {
				p.On("Plan", mock.Anything, "req-2", mock.Anything, (*intent.Record)(nil)).Return(holdingResult("req-2"))
			},
			check: func(t *testing.T, vars map[string]interface{}) {
				assert.Equal(t, "req-2", vars["requestId"])
			},
		},
		{
			name:      "plan is published",
			publish:   true,
			variables: map[string]interface{}{"requestId": "req-3", "request": request},
			setup: func(p *MockPlanner, pub *MockPublisher) {
				res := holdingResult("req-3")
				p.On("Plan", mock.Anything, "req-3", mock.Anything, mock.Anything).Return(res)
				pub.On("Publish", mock.Anything, "req-3", holdingRecord, res.Tasks).Return("research-plan:req-3", nil)
			},
			check: func(t *testing.T, vars map[string]interface{}) {
				assert.Equal(t, "research-plan:req-3", vars["handoffKey"])
			},
		},
		{
			name:      "publish failure is retryable",
			publish:   true,
			variables: map[string]interface{}{"requestId": "req-4", "request": request},
			setup: func(p *MockPlanner, pub *MockPublisher) {
				p.On("Plan", mock.Anything, "req-4", mock.Anything, mock.Anything).Return(holdingResult("req-4"))
				pub.On("Publish", mock.Anything, "req-4", mock.Anything, mock.Anything).Return("", stderrors.New("connection refused"))
			},
			wantCode: errors.ErrCodePlanHandoffFailed,
		},
		{
			name:      "empty company name",
			variables: map[string]interface{}{"request": map[string]interface{}{"company_name": ""}},
			wantCode:  errors.ErrCodeInputSchemaMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, pub := new(MockPlanner), new(MockPublisher)
			if tt.setup != nil {
				tt.setup(p, pub)
			}
			cfg := DefaultConfig()
			cfg.RegistryPath = registryPath(t)
			cfg.PublishPlan = tt.publish
			h := newHandler(t, cfg, p, pub)

			vars, err := h.process(context.Background(), createMockJob(1, tt.variables))
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, errors.AsStandardError(err).Code)
				return
			}
			require.NoError(t, err)
			tt.check(t, vars)
			p.AssertExpectations(t)
			pub.AssertExpectations(t)
		})
	}
}

func TestHandler_HandoffFailureResolution(t *testing.T) {
	job := createMockJob(5, nil)
	err := errors.NewPlanHandoffFailedError("req-5", stderrors.New("connection refused"))

	res := errors.NewErrorHandler(logger.NewNoOpLogger()).Resolve(job, err)
	assert.False(t, res.Throw)
	assert.Equal(t, 2, res.Retries)
}

// ==========================
// Pipeline
// ==========================

func TestHandler_PublishesToRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := database.WrapRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = client.Close() })
	store := handoff.NewStore(client, config.HandoffConfig{Enabled: true})

	cfg := DefaultConfig()
	cfg.PublishPlan = true
	h := newHandler(t, cfg, orchestrator.NewService(nil), store)

	vars, err := h.process(context.Background(), createMockJob(6, map[string]interface{}{
		"requestId": "techstart-1",
		"request": map[string]interface{}{
			"company_name":        "TechStart B.V.",
			"industry":            "Software Development",
			"timeline_preference": "urgent",
		},
	}))
	require.NoError(t, err)
	assert.Equal(t, "FORCE_BV", vars["planPath"])
	assert.Equal(t, "research-plan:techstart-1", vars["handoffKey"])

	outputSchema, err := registry.OutputValidator(registryPath(t), TaskType)
	require.NoError(t, err)
	assert.True(t, outputSchema.Validate(vars).Valid, "output violates the registry contract")

	plan, err := store.Load(context.Background(), "techstart-1")
	require.NoError(t, err)
	assert.Equal(t, vars["tasks"], plan.Tasks)
	assert.Equal(t, handoff.DefaultTTL, mr.TTL("research-plan:techstart-1"))
}
