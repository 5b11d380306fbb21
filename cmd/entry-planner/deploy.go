package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"market-entry-workers/internal/common/camunda"
)

var (
	deployDir      string
	deployResource []string
)

var deployCmd = &cobra.Command{
	Use:   "deploy",
	Short: "Deploy the market-entry process models to Zeebe",
	Long: "deploy sends every .bpmn file in --dir, or the files named with --resource, " +
		"to the broker configured under camunda.broker_address in one deployment.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		files := deployResource
		if len(files) == 0 {
			files, err = camunda.BPMNFiles(deployDir)
			if err != nil {
				return err
			}
		}
		if len(files) == 0 {
			return fmt.Errorf("no BPMN files found in %s", deployDir)
		}
		for _, f := range files {
			if _, err := os.Stat(f); err != nil {
				return fmt.Errorf("resource %s: %w", f, err)
			}
		}

		client, err := camunda.NewClientWithConfig(camunda.ConfigFromApp(cfg.Camunda))
		if err != nil {
			return err
		}
		defer client.Close()

		deployed, err := client.DeployResources(cmd.Context(), files...)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), "", deployed)
	},
}

func init() {
	deployCmd.Flags().StringVarP(&deployDir, "dir", "d", "bpmn", "Directory holding .bpmn files")
	deployCmd.Flags().StringSliceVar(&deployResource, "resource", nil, "Individual resource files (overrides --dir)")
	rootCmd.AddCommand(deployCmd)
}
