package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"goodwatch/internal/moodtag"
)

func newTagCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "tag <text>",
		Short:       "Show the mood tags derived from text",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			tags := moodtag.Tag(strings.Join(args, " ")).Sorted()
			out := cmd.OutOrStdout()
			if len(tags) == 0 {
				fmt.Fprintln(out, "(no tags)")
				return nil
			}
			fmt.Fprintln(out, strings.Join(tags, ", "))
			return nil
		},
	}
}
