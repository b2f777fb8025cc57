package recommend

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"goodwatch/internal/catalog"
	"goodwatch/internal/logging"
	"goodwatch/internal/moodtag"
	"goodwatch/internal/store"
)

// MovieSource is the catalog query the catalog strategy depends on.
type MovieSource interface {
	QueryMovies(ctx context.Context, q store.MovieQuery) ([]catalog.Movie, error)
}

// CatalogOptions tunes CatalogRecommender.
type CatalogOptions struct {
	CandidateWindow       int
	BlockbusterPopularity float64
}

// CatalogRecommender picks from the local catalog by language, era and mood
// tag overlap.
type CatalogRecommender struct {
	movies MovieSource
	opts   CatalogOptions
	logger *slog.Logger
}

// NewCatalogRecommender builds the catalog strategy.
func NewCatalogRecommender(movies MovieSource, opts CatalogOptions, logger *slog.Logger) *CatalogRecommender {
	if opts.CandidateWindow < ResultSize {
		opts.CandidateWindow = 30
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &CatalogRecommender{
		movies: movies,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "recommend.catalog"),
	}
}

// Name implements Recommender.
func (c *CatalogRecommender) Name() string { return "catalog" }

// Recommend implements Recommender. Fewer than six matches are returned as-is.
func (c *CatalogRecommender) Recommend(ctx context.Context, req Request) (Result, error) {
	tags := moodtag.Tag(req.Mood).Sorted()
	candidates, err := c.movies.QueryMovies(ctx, store.MovieQuery{
		LanguageCode: req.Language.Code,
		Era:          req.Era,
		MoodTags:     tags,
		Exclude:      req.Exclusions,
		Limit:        c.opts.CandidateWindow,
	})
	if err != nil {
		return Result{}, err
	}
	movies := arrange(dedupe(candidates), c.opts.BlockbusterPopularity, ResultSize)
	for i := range movies {
		decorate(&movies[i], req.Mood, tags)
	}
	c.logger.DebugContext(ctx, "catalog recommendation",
		logging.String("mood_tags", strings.Join(tags, ",")),
		logging.Int("candidates", len(candidates)),
		logging.Int("returned", len(movies)),
	)
	return Result{Movies: movies, Strategy: c.Name()}, nil
}

// Replacements implements Recommender, returning the most popular unseen
// matches.
func (c *CatalogRecommender) Replacements(ctx context.Context, req ReplacementRequest) ([]catalog.Movie, error) {
	tags := moodtag.Tag(req.Mood).Sorted()
	movies, err := c.movies.QueryMovies(ctx, store.MovieQuery{
		LanguageCode: req.Language.Code,
		Era:          req.Era,
		MoodTags:     tags,
		Exclude:      req.Exclusions,
		Limit:        req.Count,
	})
	if err != nil {
		return nil, err
	}
	for i := range movies {
		decorate(&movies[i], req.Mood, tags)
	}
	return movies, nil
}

func decorate(m *catalog.Movie, mood string, tags []string) {
	if m.Language == "" {
		if lang, ok := catalog.LanguageForCode(m.LanguageCode); ok {
			m.Language = lang.Name
		}
	}
	if m.Runtime == "" {
		m.Runtime = catalog.FormatRuntime(m.RuntimeMinutes)
	}
	if m.WhereToWatch == "" {
		m.WhereToWatch = whereToWatch(m.Providers)
	}
	if m.Why == "" {
		m.Why = catalogWhy(*m, mood, tags)
	}
}

func catalogWhy(m catalog.Movie, mood string, tags []string) string {
	pitch := strings.TrimSpace(m.Tagline)
	if pitch == "" {
		pitch = firstSentence(m.Overview)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You said %q", mood)
	if shared := sharedTags(m.MoodTags, tags); len(shared) > 0 {
		fmt.Fprintf(&b, ", and this one is %s", strings.Join(shared, " and "))
	}
	b.WriteString(". ")
	if pitch != "" {
		b.WriteString(pitch)
		if !strings.HasSuffix(pitch, ".") && !strings.HasSuffix(pitch, "!") && !strings.HasSuffix(pitch, "?") {
			b.WriteByte('.')
		}
	} else if m.Year > 0 {
		fmt.Fprintf(&b, "A %d pick that will give you exactly what you need.", m.Year)
	}
	return strings.TrimSpace(b.String())
}

func sharedTags(movieTags, wanted []string) []string {
	var out []string
	for _, tag := range wanted {
		for _, have := range movieTags {
			if tag == have {
				out = append(out, tag)
				break
			}
		}
	}
	return out
}

func firstSentence(text string) string {
	text = strings.TrimSpace(text)
	if idx := strings.Index(text, ". "); idx > 0 {
		return text[:idx+1]
	}
	return text
}
