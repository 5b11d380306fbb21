package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/orchestrator"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan the research tasks for a market-entry request",
	Long:  "Classifies a request file, maps the intent to the ordered research tasks and optionally publishes the plan to redis.",
	RunE:  runPlan,
}

var (
	planRequest   string
	planHeuristic bool
	planOut       string
	planPublish   bool
)

type planOutput struct {
	orchestrator.Result
	HandoffKey string `json:"handoffKey,omitempty"`
}

func init() {
	planCmd.Flags().StringVarP(&planRequest, "request", "r", "", "Path to request JSON (required)")
	planCmd.Flags().BoolVar(&planHeuristic, "heuristic", false, "Skip the remote classifier")
	planCmd.Flags().StringVarP(&planOut, "out", "o", "", "Write the plan to this file instead of stdout")
	planCmd.Flags().BoolVar(&planPublish, "publish", false, "Publish the plan to the redis hand-off store")

	if err := planCmd.MarkFlagRequired("request"); err != nil {
		panic(fmt.Sprintf("failed to mark request flag as required: %v", err))
	}

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, _ []string) error {
	requestID, req, err := readRequest(planRequest)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, cfg, cleanup, err := newService(ctx, planHeuristic)
	if err != nil {
		return err
	}
	defer cleanup()

	result := svc.Plan(ctx, orchestrator.NewRequestID(requestID), req, nil)
	out := planOutput{Result: result}

	if planPublish {
		key, err := publishPlan(ctx, cfg, result)
		if err != nil {
			return err
		}
		out.HandoffKey = key
		fmt.Fprintf(cmd.ErrOrStderr(), "Published plan to %s\n", key)
	}

	return writeJSON(cmd.OutOrStdout(), planOut, out)
}

func publishPlan(ctx context.Context, cfg *config.Config, result orchestrator.Result) (string, error) {
	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return "", err
	}
	defer closeStore()

	return store.Publish(ctx, result.RequestID, result.Intent, result.Tasks)
}
