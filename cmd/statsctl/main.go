package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/thep200/github-stats-cache/internal/app"
	"github.com/thep200/github-stats-cache/internal/repokey"
)

var loaderName string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "statsctl",
		Short:         "Inspect and warm the GitHub stats cache",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&loaderName, "config", "viper", "config loader: viper or mock")

	root.AddCommand(newKeyCmd(), newGetCmd(), newBatchCmd(), newMigrateCmd())
	return root
}

func newKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key <url>...",
		Short: "Print the cache key for each repository URL",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, url := range args {
				key := repokey.Key(url)
				if key == "" {
					key = "-"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", url, key)
			}
			return nil
		},
	}
}

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <url>...",
		Short: "Look up stats one repository at a time",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Load(loaderName)
			if err != nil {
				return err
			}
			defer a.Close()

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, url := range args {
				stats, outcome := a.Manager.Lookup(cmd.Context(), url)
				if err := enc.Encode(map[string]interface{}{"url": url, "stats": stats, "outcome": outcome}); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newBatchCmd() *cobra.Command {
	var concurrency int
	cmd := &cobra.Command{
		Use:   "batch <url>...",
		Short: "Look up stats in throttled groups",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.Load(loaderName)
			if err != nil {
				return err
			}
			defer a.Close()

			results := a.Manager.GetStatsBatch(cmd.Context(), args, concurrency)
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		},
	}
	cmd.Flags().IntVar(&concurrency, "concurrency", 0, "lookups per group (defaults to statscache.batchsize)")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the github_stats table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Building the app runs the migration for the mysql store.
			a, err := app.Load(loaderName)
			if err != nil {
				return err
			}
			defer a.Close()
			a.Logger.Info(context.Background(), "Store %s is ready", a.Config.StatsCache.Store)
			return nil
		},
	}
}
