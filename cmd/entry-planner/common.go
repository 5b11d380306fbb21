package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"market-entry-workers/internal/bootstrap"
	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/logger"
	"market-entry-workers/internal/common/validation"
	"market-entry-workers/internal/intent"
	"market-entry-workers/internal/orchestrator"
)

// requestDocument is the on-disk request. Files may wrap the request with a
// request id or hold the bare request fields.
type requestDocument struct {
	RequestID string          `json:"requestId"`
	Request   *intent.Request `json:"request"`
}

func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromFile(configPath)
	}
	return config.Load()
}

// newCLILogger keeps stdout free for results.
func newCLILogger(cfg *config.Config) (logger.Logger, func()) {
	logCfg := cfg.Logging
	logCfg.Output = "stderr"
	zapLog, err := logger.NewFromConfig(logCfg)
	if err != nil {
		return logger.NewNoOpLogger(), func() {}
	}
	return logger.NewZapAdapter(zapLog), func() { _ = zapLog.Sync() }
}

// readRequest loads and validates a request file.
func readRequest(path string) (string, intent.Request, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", intent.Request{}, fmt.Errorf("failed to read request %s: %w", path, err)
	}

	var doc requestDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", intent.Request{}, fmt.Errorf("failed to parse request %s: %w", path, err)
	}

	var req intent.Request
	if doc.Request != nil {
		req = *doc.Request
	} else if err := json.Unmarshal(raw, &req); err != nil {
		return "", intent.Request{}, fmt.Errorf("failed to parse request %s: %w", path, err)
	}

	if result := validation.ValidateStruct(&req); !result.Valid {
		return "", intent.Request{}, fmt.Errorf("invalid request %s: %s", path, result.Error())
	}
	return doc.RequestID, req, nil
}

// newService loads config and builds the orchestrator for one command run.
func newService(ctx context.Context, heuristic bool) (*orchestrator.Service, *config.Config, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, syncLog := newCLILogger(cfg)
	svc, closeBackend, err := bootstrap.NewService(ctx, cfg, log, bootstrap.Options{ForceHeuristic: heuristic})
	cleanup := func() {
		_ = closeBackend()
		syncLog()
	}
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return svc, cfg, cleanup, nil
}

// writeJSON writes v to path, or to w when path is empty.
func writeJSON(w io.Writer, path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = w.Write(data)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
