package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/logger"
	"market-entry-workers/internal/common/observability"
	"market-entry-workers/internal/intent"
	"market-entry-workers/internal/planner"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) GenerateStructured(ctx context.Context, systemInstruction, prompt string) (string, error) {
	args := m.Called(ctx, systemInstruction, prompt)
	return args.String(0), args.Error(1)
}

var scenarioA = intent.Request{
	CompanyName:        "TechStart B.V.",
	TimelinePreference: "ASAP",
	Industry:           "Software",
	EntryGoals:         []string{"Hire employees"},
}

func newService(t *testing.T, backend intent.Backend, opts ...Option) *Service {
	t.Helper()
	log := logger.NewTestLogger(t)

	var primary intent.Classifier
	if backend != nil {
		primary = intent.NewRemoteClassifier(backend)
	}

	obs, err := observability.NewWithRegisterer(config.ObservabilityConfig{ServiceName: "test"}, promclient.NewRegistry())
	require.NoError(t, err)
	t.Cleanup(func() { _ = obs.Shutdown(context.Background()) })

	opts = append([]Option{WithLogger(log), WithObservability(obs)}, opts...)
	return NewService(intent.NewFallbackClassifier(primary, intent.WithLogger(log)), opts...)
}

// ==========================
// Plan
// ==========================

func TestService_Plan(t *testing.T) {
	holding := intent.Record{IsHolding: true, MustBeBV: true, Intent: intent.KindSetup, EntityType: intent.EntityBV, Urgency: intent.UrgencyLow}

	tests := []struct {
		name         string
		response     string
		backendErr   error
		provided     *intent.Record
		wantStrategy intent.Strategy
		wantPath     planner.Path
		wantTasks    int
	}{
		{
			name:         "remote record drives the plan",
			response:     `{"is_holding":true,"must_be_bv":true,"intent":"SETUP","entity_type":"BV","urgency":"HIGH","industry_context":"TECH"}`,
			wantStrategy: intent.StrategyRemote,
			wantPath:     planner.PathHolding,
			wantTasks:    5,
		},
		{
			name:         "remote failure falls back to heuristic",
			backendErr:   errors.New("500 internal server error"),
			wantStrategy: intent.StrategyHeuristic,
			wantPath:     planner.PathForceBV,
			wantTasks:    6,
		},
		{
			name:         "provided intent skips classification",
			provided:     &holding,
			wantStrategy: intent.StrategyProvided,
			wantPath:     planner.PathHolding,
			wantTasks:    5,
		},
		{
			name:         "invalid provided intent is classified again",
			provided:     &intent.Record{Intent: intent.KindSetup, Urgency: intent.UrgencyHigh, EntityType: intent.EntityHolding},
			backendErr:   errors.New("unavailable"),
			wantStrategy: intent.StrategyHeuristic,
			wantPath:     planner.PathForceBV,
			wantTasks:    6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &MockBackend{}
			backend.On("GenerateStructured", mock.Anything, intent.SystemInstruction, mock.Anything).
				Return(tt.response, tt.backendErr).Maybe()

			res := newService(t, backend).Plan(context.Background(), "req-1", scenarioA, tt.provided)

			assert.Equal(t, "req-1", res.RequestID)
			assert.Equal(t, tt.wantStrategy, res.Strategy)
			assert.Equal(t, tt.wantPath, res.Path)
			assert.Len(t, res.Tasks, tt.wantTasks)
			assert.NotEmpty(t, res.Sections)

			if tt.provided != nil && tt.wantStrategy == intent.StrategyProvided {
				backend.AssertNotCalled(t, "GenerateStructured", mock.Anything, mock.Anything, mock.Anything)
			}
		})
	}
}

func TestService_PlanAssignsRequestID(t *testing.T) {
	res := newService(t, nil).Plan(context.Background(), "", scenarioA, nil)

	assert.Len(t, res.RequestID, 36)
	assert.Equal(t, intent.StrategyHeuristic, res.Strategy)
	assert.Empty(t, res.FallbackReason)
}

func TestService_ClassificationTimeout(t *testing.T) {
	backend := &MockBackend{}
	backend.On("GenerateStructured", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded).Once()

	svc := newService(t, backend, WithClassificationTimeout(20*time.Millisecond))

	start := time.Now()
	res := svc.Plan(context.Background(), "req-timeout", scenarioA, nil)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, intent.StrategyHeuristic, res.Strategy)
	assert.Equal(t, "timeout", res.FallbackReason)
	assert.Equal(t, planner.PathForceBV, res.Path)
}

func TestResult_JSON(t *testing.T) {
	res := newService(t, nil).Plan(context.Background(), "req-json", intent.Request{
		CompanyName:       "Acme Holding NV",
		TaxConsiderations: []string{"Participation exemption"},
	}, nil)

	raw, err := json.Marshal(res)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "req-json", decoded["requestId"])
	assert.Equal(t, "HOLDING", decoded["planPath"])
	assert.Equal(t, "heuristic", decoded["classifierStrategy"])
	assert.Len(t, decoded["tasks"], 5)
	assert.NotContains(t, decoded, "fallbackReason")
}
