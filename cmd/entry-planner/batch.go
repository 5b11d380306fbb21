package main

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"market-entry-workers/internal/orchestrator"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Plan every request file in a directory",
	Long:  "Plans every *.json request in --dir concurrently. Results go to --out-dir as one file per request, or to stdout as a JSON array in file name order.",
	RunE:  runBatch,
}

var (
	batchDir         string
	batchConcurrency int
	batchHeuristic   bool
	batchOutDir      string
)

func init() {
	batchCmd.Flags().StringVarP(&batchDir, "dir", "d", "", "Directory of request JSON files (required)")
	batchCmd.Flags().IntVarP(&batchConcurrency, "concurrency", "c", 4, "Maximum requests planned at once")
	batchCmd.Flags().BoolVar(&batchHeuristic, "heuristic", false, "Skip the remote classifier")
	batchCmd.Flags().StringVar(&batchOutDir, "out-dir", "", "Write one plan per request into this directory")

	if err := batchCmd.MarkFlagRequired("dir"); err != nil {
		panic(fmt.Sprintf("failed to mark dir flag as required: %v", err))
	}

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	if batchConcurrency <= 0 {
		return fmt.Errorf("concurrency must be greater than 0, got %d", batchConcurrency)
	}

	files, err := filepath.Glob(filepath.Join(batchDir, "*.json"))
	if err != nil {
		return fmt.Errorf("failed to list %s: %w", batchDir, err)
	}
	if len(files) == 0 {
		return fmt.Errorf("no request files found in %s", batchDir)
	}
	sort.Strings(files)

	svc, _, cleanup, err := newService(cmd.Context(), batchHeuristic)
	if err != nil {
		return err
	}
	defer cleanup()

	results := make([]orchestrator.Result, len(files))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(batchConcurrency)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			requestID, req, err := readRequest(file)
			if err != nil {
				return err
			}
			if requestID == "" {
				requestID = strings.TrimSuffix(filepath.Base(file), ".json")
			}

			results[i] = svc.Plan(ctx, requestID, req, nil)

			if batchOutDir != "" {
				return writeJSON(nil, filepath.Join(batchOutDir, filepath.Base(file)), results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	if batchOutDir != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Planned %d requests into %s\n", len(results), batchOutDir)
		return nil
	}
	return writeJSON(cmd.OutOrStdout(), "", results)
}
