package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/superagent-dev/superagent/internal/change"
	"github.com/superagent-dev/superagent/internal/log"
	"github.com/superagent-dev/superagent/internal/update"
)

var changesCmd = &cobra.Command{
	Use:   "changes",
	Short: "Report what changed on disk since the last snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		store, err := openStore()
		if err != nil {
			return err
		}
		coord := update.NewCoordinator(store, cfg.Tracking, log.DefaultLogger())

		ctx := cmd.Context()
		records, err := coord.ChangesSince(ctx)
		if err != nil {
			return err
		}

		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(records); err != nil {
				return err
			}
		} else {
			printChanges(cmd, records)
		}

		if record, _ := cmd.Flags().GetBool("record"); record {
			if _, err := coord.RecordProject(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), styleDim.Render("baseline updated"))
		}

		return nil
	},
}

func printChanges(cmd *cobra.Command, records []*change.Record) {
	out := cmd.OutOrStdout()

	if len(records) == 0 {
		fmt.Fprintln(out, "no changes")
		return
	}

	for _, rec := range records {
		switch rec.Type {
		case change.TypeAdded:
			fmt.Fprintf(out, "%s %s\n", styleAdded.Render("A"), rec.Path)
		case change.TypeModified:
			fmt.Fprintf(out, "%s %s %s\n", styleModified.Render("M"), rec.Path,
				styleDim.Render(fmt.Sprintf("(+%d -%d, ratio %.2f)",
					rec.Insertions, rec.Deletions, rec.DiffRatio)))
		case change.TypeDeleted:
			fmt.Fprintf(out, "%s %s\n", styleDeleted.Render("D"), rec.Path)
		}
	}

	s := change.Summarize(records)
	fmt.Fprintf(out, "\n%s %d added, %d modified, %d deleted (+%d -%d lines)\n",
		styleHeader.Render("total:"), s.Added, s.Modified, s.Deleted,
		s.Insertions, s.Deletions)
}

func init() {
	changesCmd.Flags().Bool("json", false, "output records as JSON")
	changesCmd.Flags().Bool("record", false, "re-snapshot the project after reporting, resetting the baseline")
	rootCmd.AddCommand(changesCmd)
}
