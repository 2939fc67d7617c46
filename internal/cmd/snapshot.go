package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/superagent-dev/superagent/internal/log"
	"github.com/superagent-dev/superagent/internal/snapshot"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Manage the project snapshot index",
}

var snapshotTakeCmd = &cobra.Command{
	Use:   "take [paths...]",
	Short: "Snapshot specific files, or the whole project when no paths are given",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if len(args) == 0 {
			taken, err := store.TakeProject(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "snapshotted %d files\n", len(taken))
			return nil
		}

		taken, err := store.TakeBatch(ctx, args)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "snapshotted %d of %d files\n", len(taken), len(args))
		return nil
	},
}

var snapshotStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show what the snapshot index currently tracks",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		index := store.Index()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d files\n",
			styleHeader.Render("tracked:"), len(index))
		fmt.Fprintf(cmd.OutOrStdout(), "index: %s\n", styleDim.Render(store.IndexPath()))
		return nil
	},
}

var snapshotCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Drop snapshots older than the retention window",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}

		removed, err := store.Cleanup()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d expired snapshots\n", removed)
		return nil
	},
}

// openStore builds a snapshot store for the configured project root
func openStore() (*snapshot.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return snapshot.NewStore(flagProjectRoot, cfg.Tracking, log.DefaultLogger())
}

func init() {
	snapshotCmd.AddCommand(snapshotTakeCmd)
	snapshotCmd.AddCommand(snapshotStatusCmd)
	snapshotCmd.AddCommand(snapshotCleanupCmd)
	rootCmd.AddCommand(snapshotCmd)
}
