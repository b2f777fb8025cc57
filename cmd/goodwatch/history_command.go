package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var (
		sessionID string
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List a session's watched movies",
		RunE: func(cmd *cobra.Command, args []string) error {
			sessionID = strings.TrimSpace(sessionID)
			if sessionID == "" {
				return fmt.Errorf("--session is required")
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.ListWatched(cmd.Context(), sessionID)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, entries)
			}
			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(out, "No watched movies for session %s\n", sessionID)
				return nil
			}
			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				year := ""
				if e.Year > 0 {
					year = strconv.Itoa(e.Year)
				}
				rows = append(rows, []string{e.Title, year, e.CreatedAt.Local().Format("2006-01-02 15:04")})
			}
			fmt.Fprintln(out, renderTable(out, []string{"Title", "Year", "Watched"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft}))
			return nil
		},
	}
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session identifier")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
