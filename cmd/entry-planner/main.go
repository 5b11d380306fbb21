// cmd/entry-planner/main.go
// Package main provides the entry-planner CLI, which classifies Netherlands
// market-entry requests and plans their research tasks outside of Zeebe.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "entry-planner",
	Short: "Netherlands market-entry intent classifier and research planner",
	Long: "entry-planner classifies a business-setup request into intent flags and maps them " +
		"to an ordered list of research tasks, using the same chain as the Zeebe workers.",
	SilenceUsage: true,
}

var configPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (defaults to configs/config.yaml lookup)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
