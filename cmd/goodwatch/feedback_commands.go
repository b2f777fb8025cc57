package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newFeedbackCommand(ctx *commandContext) *cobra.Command {
	feedbackCmd := &cobra.Command{
		Use:   "feedback",
		Short: "Review viewer feedback",
	}
	feedbackCmd.AddCommand(newFeedbackListCommand(ctx))
	return feedbackCmd
}

func newFeedbackListCommand(ctx *commandContext) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the newest feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := st.ListFeedback(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, rows)
			}
			out := cmd.OutOrStdout()
			if len(rows) == 0 {
				fmt.Fprintln(out, "No feedback yet")
				return nil
			}
			helpful := 0
			table := make([][]string, 0, len(rows))
			for _, fb := range rows {
				if fb.WasHelpful {
					helpful++
				}
				table = append(table, []string{
					fb.CreatedAt.Local().Format("2006-01-02 15:04"),
					fb.Mood,
					yesNo(fb.WasHelpful),
					fb.Text,
					strconv.Itoa(len(fb.Recommendations)),
				})
			}
			fmt.Fprintf(out, "%d feedback entries, %d helpful\n", len(rows), helpful)
			fmt.Fprintln(out, renderTable(out, []string{"When", "Mood", "Helpful", "Feedback", "Movies"}, table,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight}))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum entries to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
