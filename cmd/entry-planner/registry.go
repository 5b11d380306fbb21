package main

import (
	"errors"
	"fmt"
	"io/fs"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"market-entry-workers/pkg/registry"
)

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect and maintain the activity registry",
}

var registryPath string

var registryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered activities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tTASK TYPE\tSTATUS\tVERSION\tTIMEOUT")
		for _, a := range reg.Activities {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.TaskType, a.ImplementationStatus, a.Version, a.Timeout)
		}
		return tw.Flush()
	},
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the registry file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.Validate(); err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed (%d activities).\n", len(reg.Activities))
		return nil
	},
}

var (
	addID          string
	addDisplayName string
	addDescription string
	addCategory    string
	addTaskType    string
	addVersion     string
	addStatus      string
	addTimeout     string
)

var registryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add an activity",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if errors.Is(err, fs.ErrNotExist) {
			reg = &registry.ActivityRegistry{Version: "1.0.0"}
		} else if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}

		if _, err := time.ParseDuration(addTimeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", addTimeout, err)
		}

		activity := registry.Activity{
			ID:                   addID,
			DisplayName:          addDisplayName,
			Description:          addDescription,
			Category:             addCategory,
			Version:              addVersion,
			TaskType:             addTaskType,
			ImplementationStatus: addStatus,
			InputSchema:          map[string]interface{}{},
			OutputSchema:         map[string]interface{}{},
			ErrorCodes:           []string{},
			Timeout:              addTimeout,
			Workflows:            []string{},
			Tags:                 []string{},
		}
		if activity.TaskType == "" {
			activity.TaskType = activity.ID
		}

		if err := reg.Add(activity); err != nil {
			return err
		}
		if err := reg.Save(registryPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added activity: %s\n", activity.ID)
		return nil
	},
}

var (
	updateID    string
	updateField string
	updateValue string
)

var registryUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update one field of an activity",
	RunE: func(cmd *cobra.Command, _ []string) error {
		reg, err := registry.LoadRegistry(registryPath)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.Update(updateID, updateField, updateValue); err != nil {
			return err
		}
		if err := reg.Save(registryPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, field %s to %s\n", updateID, updateField, updateValue)
		return nil
	},
}

func init() {
	registryCmd.PersistentFlags().StringVar(&registryPath, "path", "configs/activity-registry.json", "Path to registry file")

	registryAddCmd.Flags().StringVar(&addID, "id", "", "Activity ID (required)")
	registryAddCmd.Flags().StringVar(&addDisplayName, "display-name", "", "Display name (required)")
	registryAddCmd.Flags().StringVar(&addDescription, "description", "", "Description")
	registryAddCmd.Flags().StringVar(&addCategory, "category", "market-entry", "Category")
	registryAddCmd.Flags().StringVar(&addTaskType, "task-type", "", "Zeebe task type (defaults to the ID)")
	registryAddCmd.Flags().StringVar(&addVersion, "version", "1.0.0", "Version")
	registryAddCmd.Flags().StringVar(&addStatus, "status", registry.StatusPlanned, "Implementation status")
	registryAddCmd.Flags().StringVar(&addTimeout, "timeout", "10s", "Job timeout")
	for _, name := range []string{"id", "display-name"} {
		if err := registryAddCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	registryUpdateCmd.Flags().StringVar(&updateID, "id", "", "Activity ID (required)")
	registryUpdateCmd.Flags().StringVar(&updateField, "field", "", "Field to update (required)")
	registryUpdateCmd.Flags().StringVar(&updateValue, "value", "", "New value (required)")
	for _, name := range []string{"id", "field", "value"} {
		if err := registryUpdateCmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}

	registryCmd.AddCommand(registryListCmd, registryValidateCmd, registryAddCmd, registryUpdateCmd)
	rootCmd.AddCommand(registryCmd)
}
