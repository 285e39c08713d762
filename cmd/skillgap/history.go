package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"skillgap-backend/internal/history"
)

func newHistoryCmd(build appBuilder) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List stored analyses, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if limit < 1 {
				return fmt.Errorf("limit must be positive, got %d", limit)
			}
			ctx := cmd.Context()
			app, err := build(ctx)
			if err != nil {
				return fmt.Errorf("bootstrap: %w", err)
			}
			defer app.Close()

			items, err := app.History.ListAnalyses(ctx, history.ListFilter{Limit: limit})
			if err != nil {
				return fmt.Errorf("list history: %w", err)
			}
			if len(items) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No analyses yet.")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tANALYZED\tFILE\tQUERY\tMATCH\tJOBS")
			for _, a := range items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f%%\t%d\n",
					a.ID, a.AnalyzedAt.Format("2006-01-02 15:04"), a.ResumeFilename, a.Query, a.MatchPercentage, a.JobsAnalyzed)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "Maximum analyses to list")
	return cmd
}
