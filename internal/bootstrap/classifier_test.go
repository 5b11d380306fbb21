package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/logger"
	"market-entry-workers/internal/intent"
)

var techStart = intent.Request{
	CompanyName:        "TechStart B.V.",
	Industry:           "Software Development",
	TimelinePreference: "urgent",
}

func baseConfig() *config.Config {
	cfg := config.Defaults()
	cfg.Classifier.Timeout = 2000
	return cfg
}

func TestNewService_Strategies(t *testing.T) {
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"intent": map[string]interface{}{
				"is_holding": false,
				"must_be_bv": false,
				"intent":     "ADVISORY",
				"urgency":    "LOW",
			},
		})
	}))
	defer gateway.Close()

	tests := []struct {
		name         string
		mutate       func(cfg *config.Config)
		opts         Options
		wantStrategy intent.Strategy
		wantErr      bool
	}{
		{
			name:         "heuristic strategy",
			mutate:       func(cfg *config.Config) { cfg.Classifier.Strategy = config.StrategyHeuristic },
			wantStrategy: intent.StrategyHeuristic,
		},
		{
			name:         "forced heuristic",
			mutate:       func(cfg *config.Config) { cfg.GenAI.APIKey = "key" },
			opts:         Options{ForceHeuristic: true},
			wantStrategy: intent.StrategyHeuristic,
		},
		{
			name: "gemini without api key",
			mutate: func(cfg *config.Config) {
				cfg.GenAI.Provider = config.ProviderGemini
				cfg.GenAI.APIKey = ""
			},
			wantStrategy: intent.StrategyHeuristic,
		},
		{
			name: "gateway",
			mutate: func(cfg *config.Config) {
				cfg.GenAI.Provider = config.ProviderGateway
				cfg.GenAI.BaseURL = gateway.URL
			},
			wantStrategy: intent.StrategyRemote,
		},
		{
			name:    "unknown provider",
			mutate:  func(cfg *config.Config) { cfg.GenAI.Provider = "openai" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := baseConfig()
			tt.mutate(cfg)

			svc, closeFn, err := NewService(context.Background(), cfg, logger.NewTestLogger(t), tt.opts)
			require.NotNil(t, closeFn)
			defer closeFn()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			out := svc.Classify(context.Background(), "req-1", techStart)
			assert.Equal(t, tt.wantStrategy, out.Strategy)
			assert.NoError(t, out.Record.Validate())
		})
	}
}
