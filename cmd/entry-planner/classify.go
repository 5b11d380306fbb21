package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"market-entry-workers/internal/intent"
	"market-entry-workers/internal/orchestrator"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify a market-entry request into intent flags",
	Long:  "Runs the remote classifier with heuristic fallback on a request file and prints the intent record.",
	RunE:  runClassify,
}

var (
	classifyRequest   string
	classifyHeuristic bool
)

type classifyOutput struct {
	RequestID      string          `json:"requestId"`
	Intent         intent.Record   `json:"intent"`
	Strategy       intent.Strategy `json:"classifierStrategy"`
	FallbackReason string          `json:"fallbackReason,omitempty"`
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyRequest, "request", "r", "", "Path to request JSON (required)")
	classifyCmd.Flags().BoolVar(&classifyHeuristic, "heuristic", false, "Skip the remote classifier")

	if err := classifyCmd.MarkFlagRequired("request"); err != nil {
		panic(fmt.Sprintf("failed to mark request flag as required: %v", err))
	}

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, _ []string) error {
	requestID, req, err := readRequest(classifyRequest)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	svc, _, cleanup, err := newService(ctx, classifyHeuristic)
	if err != nil {
		return err
	}
	defer cleanup()

	requestID = orchestrator.NewRequestID(requestID)
	out := svc.Classify(ctx, requestID, req)

	return writeJSON(cmd.OutOrStdout(), "", classifyOutput{
		RequestID:      requestID,
		Intent:         out.Record,
		Strategy:       out.Strategy,
		FallbackReason: out.FallbackReason,
	})
}
