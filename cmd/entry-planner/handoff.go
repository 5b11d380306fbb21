package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"market-entry-workers/internal/common/config"
	"market-entry-workers/internal/common/database"
	"market-entry-workers/internal/handoff"
)

var handoffID string

var handoffCmd = &cobra.Command{
	Use:   "handoff",
	Short: "Inspect research plans published to redis",
}

var handoffListCmd = &cobra.Command{
	Use:   "list",
	Short: "List unexpired plans and their remaining lifetime",
	RunE: withStore(func(cmd *cobra.Command, store *handoff.Store) error {
		ctx := cmd.Context()
		ids, err := store.List(ctx)
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No published plans")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "REQUEST ID\tKEY\tEXPIRES IN")
		for _, id := range ids {
			remaining, err := store.Remaining(ctx, id)
			if errors.Is(err, handoff.ErrPlanNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", id, store.Key(id), remaining.Truncate(time.Second))
		}
		return w.Flush()
	}),
}

var handoffShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print one published plan",
	RunE: withStore(func(cmd *cobra.Command, store *handoff.Store) error {
		plan, err := store.Load(cmd.Context(), handoffID)
		if err != nil {
			return fmt.Errorf("plan %s: %w", handoffID, err)
		}
		return writeJSON(cmd.OutOrStdout(), "", plan)
	}),
}

var handoffDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove a consumed plan",
	RunE: withStore(func(cmd *cobra.Command, store *handoff.Store) error {
		if err := store.Delete(cmd.Context(), handoffID); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", store.Key(handoffID))
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{handoffShowCmd, handoffDeleteCmd} {
		c.Flags().StringVar(&handoffID, "id", "", "Request id of the plan (required)")
		if err := c.MarkFlagRequired("id"); err != nil {
			panic(fmt.Sprintf("failed to mark id flag as required: %v", err))
		}
	}

	handoffCmd.AddCommand(handoffListCmd, handoffShowCmd, handoffDeleteCmd)
	rootCmd.AddCommand(handoffCmd)
}

// openStore connects to redis and returns the hand-off store over it.
func openStore(ctx context.Context, cfg *config.Config) (*handoff.Store, func(), error) {
	client, err := database.NewRedis(cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	if err := client.Ping(ctx); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return handoff.NewStore(client, cfg.Handoff), func() { _ = client.Close() }, nil
}

func withStore(run func(cmd *cobra.Command, store *handoff.Store) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, closeStore, err := openStore(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer closeStore()
		return run(cmd, store)
	}
}
