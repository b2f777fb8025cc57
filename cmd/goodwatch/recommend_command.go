package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"goodwatch/internal/catalog"
	"goodwatch/internal/logging"
	"goodwatch/internal/recommend"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var (
		language  string
		era       string
		age       string
		gender    string
		genres    []string
		sessionID string
		showAll   bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "recommend <mood>",
		Short: "Recommend movies for a mood",
		Example: `  goodwatch recommend "tired, need comfort" --language English --era 2010s
  goodwatch recommend "date night" --era recent --genre Romance --all`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := recommend.NewRequest(recommend.RequestInput{
				Mood:       strings.Join(args, " "),
				Language:   language,
				Era:        era,
				AgeBracket: age,
				Gender:     gender,
				Genres:     genres,
				SessionID:  sessionID,
			})
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			if req.SessionID != "" {
				watched, err := st.WatchedExclusions(cmd.Context(), req.SessionID)
				if err != nil {
					logging.WarnWithContext(ctx.log(), "watched history unavailable", "history_read_failed",
						logging.Error(err),
						logging.String(logging.FieldImpact, "previously watched titles may be recommended"),
					)
				}
				req.Exclusions.Merge(watched)
			}

			rec, err := recommend.New(cfg, st, ctx.log())
			if err != nil {
				return err
			}
			res, err := rec.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}

			movies := res.Displayed()
			if showAll {
				movies = res.Movies
			}
			if asJSON {
				return writeJSON(cmd, movies)
			}
			out := cmd.OutOrStdout()
			if len(movies) == 0 {
				fmt.Fprintln(out, "No movies matched; try another era or run 'goodwatch catalog import'")
				return nil
			}
			fmt.Fprintf(out, "Picks for %q (%s, %s) from the %s strategy\n", req.Mood, req.Language.Name, req.Era.Label, rec.Name())
			fmt.Fprintln(out, renderMovies(out, movies))
			return nil
		},
	}
	cmd.Flags().StringVarP(&language, "language", "l", "English", "Movie language: "+strings.Join(catalog.LanguageNames(), ", "))
	cmd.Flags().StringVarP(&era, "era", "e", "", "Release era: classic, 80s & 90s, 2000s, 2010s, recent")
	cmd.Flags().StringVar(&age, "age", "", "Age bracket: "+strings.Join(catalog.AgeBrackets, ", "))
	cmd.Flags().StringVar(&gender, "gender", "", "Gender: "+strings.Join(catalog.Genders, ", "))
	cmd.Flags().StringSliceVar(&genres, "genre", nil, "Favourite genre (repeatable, up to 3)")
	cmd.Flags().StringVar(&sessionID, "session", "", "Session whose watched titles are excluded")
	cmd.Flags().BoolVar(&showAll, "all", false, "Include the backup picks")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	_ = cmd.MarkFlagRequired("era")
	return cmd
}

func renderMovies(out io.Writer, movies []catalog.Movie) string {
	rows := make([][]string, 0, len(movies))
	for i, m := range movies {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			m.Title,
			strconv.Itoa(m.Year),
			strings.Join(m.Genres, ", "),
			m.Director,
			m.Runtime,
			m.WhereToWatch,
			m.Why,
		})
	}
	return renderTable(out,
		[]string{"#", "Title", "Year", "Genres", "Director", "Runtime", "Where to watch", "Why"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight},
	)
}
