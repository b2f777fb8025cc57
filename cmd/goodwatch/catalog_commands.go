package main

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"goodwatch/internal/catalog"
	"goodwatch/internal/ingest"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Fill, tag and inspect the movie catalog",
	}
	catalogCmd.AddCommand(newCatalogImportCommand(ctx))
	catalogCmd.AddCommand(newCatalogEnrichCommand(ctx))
	catalogCmd.AddCommand(newCatalogStatsCommand(ctx))
	return catalogCmd
}

func newCatalogImportCommand(ctx *commandContext) *cobra.Command {
	var (
		pages    int
		endpoint string
		language string
		era      string
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import movies from TMDB list or discover endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := ingest.ImportOptions{Endpoint: endpoint, Pages: pages}
			if language != "" {
				lang, ok := catalog.ParseLanguage(language)
				if !ok {
					return fmt.Errorf("unsupported language %q (choose from %s)", language, strings.Join(catalog.LanguageNames(), ", "))
				}
				opts.LanguageCode = lang.Code
			}
			if era != "" {
				parsed, ok := catalog.ParseEra(era)
				if !ok {
					return fmt.Errorf("unknown era %q", era)
				}
				opts.Era = parsed
			}
			if (opts.LanguageCode != "" || opts.Era.Label != "") && endpoint != "discover" {
				return fmt.Errorf("--language and --era require --endpoint discover")
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client, err := ctx.tmdbClient()
			if err != nil {
				return err
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			svc := ingest.NewService(client, st, cfg.DataDir(), ctx.log())
			report, err := svc.Import(cmd.Context(), opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d of %d movies from %d page(s); %d failed\n",
				report.Imported, report.Seen, report.Pages, report.Failed)
			return nil
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 10, "Number of result pages to import")
	cmd.Flags().StringVar(&endpoint, "endpoint", "popular", "TMDB endpoint: "+strings.Join(ingest.Endpoints, ", "))
	cmd.Flags().StringVar(&language, "language", "", "Original language filter (discover only)")
	cmd.Flags().StringVar(&era, "era", "", "Release era filter (discover only)")
	return cmd
}

func newCatalogEnrichCommand(ctx *commandContext) *cobra.Command {
	var (
		limit   int
		offset  int
		offline bool
	)

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Derive mood tags for movies that have none",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var source ingest.Source
			if !offline {
				client, err := ctx.tmdbClient()
				if err != nil {
					return err
				}
				source = client
			}
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			svc := ingest.NewService(source, st, cfg.DataDir(), ctx.log())
			report, err := svc.Enrich(cmd.Context(), ingest.EnrichOptions{Limit: limit, Offset: offset})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Processed %d movies; %d tagged; %d keyword lookups failed\n",
				report.Processed, report.Tagged, report.KeywordFailures)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 100, "Maximum movies to process")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	cmd.Flags().BoolVar(&offline, "offline", false, "Tag from stored keywords without calling TMDB")
	return cmd
}

func newCatalogStatsCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show catalog size and tagging coverage",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			stats, err := st.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd, stats)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Movies: %d (tagged %d, untagged %d)\n", stats.Movies, stats.Tagged, stats.Untagged)
			codes := make([]string, 0, len(stats.ByLanguage))
			for code := range stats.ByLanguage {
				codes = append(codes, code)
			}
			slices.Sort(codes)
			rows := make([][]string, 0, len(codes))
			for _, code := range codes {
				name := code
				if lang, ok := catalog.LanguageForCode(code); ok {
					name = lang.Name
				}
				rows = append(rows, []string{name, code, strconv.Itoa(stats.ByLanguage[code])})
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(out, []string{"Language", "Code", "Movies"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight}))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output JSON")
	return cmd
}
