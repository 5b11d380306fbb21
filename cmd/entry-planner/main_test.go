package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/database"
	"market-entry-workers/internal/handoff"
	"market-entry-workers/internal/intent"
	"market-entry-workers/internal/planner"
	"market-entry-workers/pkg/registry"
)

// ==========================
// Test Helpers
// ==========================

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func writeConfig(t *testing.T, redisAddr string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := fmt.Sprintf(`
camunda:
  broker_address: localhost:26500
redis:
  address: %q
classifier:
  strategy: heuristic
handoff:
  enabled: true
  key_prefix: "research-plan:"
  ttl: 600
logging:
  level: error
  format: json
`, redisAddr)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeRequest(t *testing.T, dir, name string, doc interface{}) string {
	t.Helper()
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, raw, 0644))
	return path
}

var techStart = map[string]interface{}{
	"company_name":        "TechStart B.V.",
	"company_type":        "B.V.",
	"industry":            "Software Development",
	"entry_goals":         []string{"Establish EU presence", "Hire local developers"},
	"timeline_preference": "urgent",
}

var acmeHolding = map[string]interface{}{
	"requestId": "acme-1",
	"request": map[string]interface{}{
		"company_name":       "Acme Holding NV",
		"tax_considerations": []string{"participation exemption"},
	},
}

// ==========================
// classify / plan
// ==========================

func TestClassifyCommand(t *testing.T) {
	cfgPath := writeConfig(t, "localhost:6379")
	reqPath := writeRequest(t, t.TempDir(), "techstart.json", techStart)

	out, err := executeCommand(t, "classify", "--config", cfgPath, "--request", reqPath, "--heuristic")
	require.NoError(t, err)

	var got classifyOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.NotEmpty(t, got.RequestID)
	assert.Equal(t, intent.StrategyHeuristic, got.Strategy)
	assert.True(t, got.Intent.MustBeBV)
	assert.Equal(t, intent.UrgencyHigh, got.Intent.Urgency)
	assert.Equal(t, intent.IndustryTech, got.Intent.IndustryContext)
}

func TestPlanCommand(t *testing.T) {
	cfgPath := writeConfig(t, "localhost:6379")
	dir := t.TempDir()
	reqPath := writeRequest(t, dir, "acme.json", acmeHolding)
	outPath := filepath.Join(dir, "out", "plan.json")

	_, err := executeCommand(t, "plan", "--config", cfgPath, "--request", reqPath, "--out", outPath)
	require.NoError(t, err)

	raw, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var got struct {
		RequestID string         `json:"requestId"`
		PlanPath  string         `json:"planPath"`
		Tasks     []planner.Task `json:"tasks"`
	}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "acme-1", got.RequestID)
	assert.Equal(t, "HOLDING", got.PlanPath)
	assert.Len(t, got.Tasks, 5)
}

func TestPlanCommand_Publish(t *testing.T) {
	mr := miniredis.RunT(t)
	cfgPath := writeConfig(t, mr.Addr())
	reqPath := writeRequest(t, t.TempDir(), "acme.json", acmeHolding)

	out, err := executeCommand(t, "plan", "--config", cfgPath, "--request", reqPath, "--publish")
	require.NoError(t, err)
	assert.Contains(t, out, `"handoffKey": "research-plan:acme-1"`)

	client := database.WrapRedis(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	defer client.Close()
	store := handoff.NewStore(client, config.HandoffConfig{KeyPrefix: "research-plan:", TTL: 600})

	plan, err := store.Load(context.Background(), "acme-1")
	require.NoError(t, err)
	assert.True(t, plan.Intent.IsHolding)
	assert.Len(t, plan.Tasks, 5)
}

func TestPlanCommand_InvalidRequests(t *testing.T) {
	cfgPath := writeConfig(t, "localhost:6379")
	dir := t.TempDir()

	tests := []struct {
		name    string
		args    func() []string
		wantErr string
	}{
		{
			name:    "missing request flag",
			args:    func() []string { return []string{"plan", "--config", cfgPath} },
			wantErr: "required",
		},
		{
			name: "missing company name",
			args: func() []string {
				return []string{"plan", "--config", cfgPath, "--request",
					writeRequest(t, dir, "nameless.json", map[string]interface{}{"industry": "Software"})}
			},
			wantErr: "company_name",
		},
		{
			name: "unreadable file",
			args: func() []string {
				return []string{"plan", "--config", cfgPath, "--request", filepath.Join(dir, "missing.json")}
			},
			wantErr: "failed to read request",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := executeCommand(t, tt.args()...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

// ==========================
// batch
// ==========================

func TestBatchCommand(t *testing.T) {
	cfgPath := writeConfig(t, "localhost:6379")
	dir := t.TempDir()
	writeRequest(t, dir, "a-techstart.json", techStart)
	writeRequest(t, dir, "b-acme.json", acmeHolding)
	writeRequest(t, dir, "c-branch.json", map[string]interface{}{
		"company_name":        "Globex LLC",
		"timeline_preference": "ASAP",
	})

	out, err := executeCommand(t, "batch", "--config", cfgPath, "--dir", dir, "--concurrency", "2")
	require.NoError(t, err)

	var results []struct {
		RequestID string `json:"requestId"`
		PlanPath  string `json:"planPath"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 3)

	assert.Equal(t, "a-techstart", results[0].RequestID)
	assert.Equal(t, "FORCE_BV", results[0].PlanPath)
	assert.Equal(t, "acme-1", results[1].RequestID)
	assert.Equal(t, "HOLDING", results[1].PlanPath)
	assert.Equal(t, "SPEED_BRANCH", results[2].PlanPath)
}

func TestBatchCommand_OutDirAndErrors(t *testing.T) {
	cfgPath := writeConfig(t, "localhost:6379")
	dir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "plans")
	writeRequest(t, dir, "acme.json", acmeHolding)

	_, err := executeCommand(t, "batch", "--config", cfgPath, "--dir", dir, "--out-dir", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "acme.json"))

	writeRequest(t, dir, "broken.json", map[string]interface{}{"industry": "Retail"})
	_, err = executeCommand(t, "batch", "--config", cfgPath, "--dir", dir)
	assert.ErrorContains(t, err, "broken.json")

	_, err = executeCommand(t, "batch", "--config", cfgPath, "--dir", t.TempDir())
	assert.ErrorContains(t, err, "no request files")

	_, err = executeCommand(t, "batch", "--config", cfgPath, "--dir", dir, "--concurrency", "0")
	assert.ErrorContains(t, err, "concurrency")
}

// ==========================
// handoff
// ==========================

func TestHandoffCommands(t *testing.T) {
	mr := miniredis.RunT(t)
	cfgPath := writeConfig(t, mr.Addr())
	reqPath := writeRequest(t, t.TempDir(), "acme.json", acmeHolding)

	out, err := executeCommand(t, "handoff", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No published plans")

	_, err = executeCommand(t, "plan", "--config", cfgPath, "--request", reqPath, "--publish")
	require.NoError(t, err)

	out, err = executeCommand(t, "handoff", "list", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "acme-1")
	assert.Contains(t, out, "research-plan:acme-1")
	assert.Contains(t, out, "10m0s")

	out, err = executeCommand(t, "handoff", "show", "--config", cfgPath, "--id", "acme-1")
	require.NoError(t, err)
	var plan handoff.Plan
	require.NoError(t, json.Unmarshal([]byte(out), &plan))
	assert.True(t, plan.Intent.IsHolding)

	out, err = executeCommand(t, "handoff", "delete", "--config", cfgPath, "--id", "acme-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Deleted research-plan:acme-1")

	_, err = executeCommand(t, "handoff", "show", "--config", cfgPath, "--id", "acme-1")
	assert.ErrorIs(t, err, handoff.ErrPlanNotFound)
}

// ==========================
// deploy
// ==========================

func TestDeployCommand_Errors(t *testing.T) {
	cfgPath := writeConfig(t, "localhost:6379")

	_, err := executeCommand(t, "deploy", "--config", cfgPath, "--dir", t.TempDir())
	assert.ErrorContains(t, err, "no BPMN files found")

	_, err = executeCommand(t, "deploy", "--config", cfgPath, "--dir", filepath.Join(t.TempDir(), "missing"))
	assert.ErrorContains(t, err, "failed to read BPMN directory")

	_, err = executeCommand(t, "deploy", "--config", cfgPath, "--resource", filepath.Join(t.TempDir(), "gone.bpmn"))
	assert.ErrorContains(t, err, "gone.bpmn")
}

// ==========================
// registry
// ==========================

func shippedRegistry(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	require.True(t, ok)
	return filepath.Join(filepath.Dir(file), "..", "..", "configs", "activity-registry.json")
}

func TestRegistryCommands_Shipped(t *testing.T) {
	out, err := executeCommand(t, "registry", "validate", "--path", shippedRegistry(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Registry validation passed (2 activities)")

	out, err = executeCommand(t, "registry", "list", "--path", shippedRegistry(t))
	require.NoError(t, err)
	assert.Contains(t, out, "classify-intent")
	assert.Contains(t, out, "plan-research-tasks")
}

func TestRegistryCommands_AddUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	_, err := executeCommand(t, "registry", "add", "--path", path,
		"--id", "draft-report", "--display-name", "Draft Report", "--timeout", "30s")
	require.NoError(t, err)

	_, err = executeCommand(t, "registry", "add", "--path", path,
		"--id", "draft-report", "--display-name", "Draft Report")
	assert.ErrorContains(t, err, "already exists")

	_, err = executeCommand(t, "registry", "add", "--path", path,
		"--id", "slow", "--display-name", "Slow", "--timeout", "forever")
	assert.ErrorContains(t, err, "invalid timeout")

	_, err = executeCommand(t, "registry", "update", "--path", path,
		"--id", "draft-report", "--field", "status", "--value", registry.StatusInProgress)
	require.NoError(t, err)

	reg, err := registry.LoadRegistry(path)
	require.NoError(t, err)
	require.Len(t, reg.Activities, 1)
	assert.Equal(t, "draft-report", reg.Activities[0].TaskType)
	assert.Equal(t, registry.StatusInProgress, reg.Activities[0].ImplementationStatus)

	_, err = executeCommand(t, "registry", "validate", "--path", path)
	require.NoError(t, err)
}
